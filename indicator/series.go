// Package indicator derives technical indicator series from candle data.
//
// All computations are pure transforms of the close and volume series. Each
// indicator's first lookback values are undefined and reported as zero by the
// underlying library, so consumers must gate on the accessors' ok result
// before comparing values.
package indicator

import (
	"github.com/markcheno/go-talib"

	"github.com/draeven/tradebot/shared"
)

// Params configures which indicator series to compute. A zero period skips
// the corresponding indicator.
type Params struct {
	// RSIPeriod is the relative strength index period.
	RSIPeriod int
	// EMAShortPeriod is the short exponential moving average period.
	EMAShortPeriod int
	// EMALongPeriod is the long exponential moving average period.
	EMALongPeriod int
	// MACDFast, MACDSlow and MACDSignal are the MACD periods.
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	// BollingerPeriod is the bollinger band moving average period.
	BollingerPeriod int
	// BollingerStdDev is the bollinger band standard deviation multiple.
	BollingerStdDev float64
	// VolumeSMAPeriod is the rolling volume average period.
	VolumeSMAPeriod int
}

// Series holds indicator values aligned index-for-index with the source candles.
type Series struct {
	Close  []float64
	Volume []float64

	RSI      []float64
	EMAShort []float64
	EMALong  []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64

	VolumeSMA []float64

	params Params
}

// Compute derives the configured indicator series from the provided candles.
func Compute(candles []shared.Candlestick, params Params) *Series {
	series := &Series{
		Close:  shared.Closes(candles),
		Volume: shared.Volumes(candles),
		params: params,
	}

	if len(series.Close) == 0 {
		return series
	}

	if params.RSIPeriod > 0 && len(series.Close) > params.RSIPeriod {
		series.RSI = talib.Rsi(series.Close, params.RSIPeriod)
	}
	if params.EMAShortPeriod > 0 && len(series.Close) >= params.EMAShortPeriod {
		series.EMAShort = talib.Ema(series.Close, params.EMAShortPeriod)
	}
	if params.EMALongPeriod > 0 && len(series.Close) >= params.EMALongPeriod {
		series.EMALong = talib.Ema(series.Close, params.EMALongPeriod)
	}
	if params.MACDSlow > 0 && len(series.Close) >= params.MACDSlow+params.MACDSignal {
		series.MACD, series.MACDSignal, series.MACDHist =
			talib.Macd(series.Close, params.MACDFast, params.MACDSlow, params.MACDSignal)
	}
	if params.BollingerPeriod > 0 && len(series.Close) >= params.BollingerPeriod {
		series.BBUpper, series.BBMiddle, series.BBLower = talib.BBands(series.Close,
			params.BollingerPeriod, params.BollingerStdDev, params.BollingerStdDev, talib.SMA)
	}
	if params.VolumeSMAPeriod > 0 && len(series.Volume) >= params.VolumeSMAPeriod {
		series.VolumeSMA = talib.Sma(series.Volume, params.VolumeSMAPeriod)
	}

	return series
}

// Len returns the number of candles backing the series.
func (s *Series) Len() int {
	return len(s.Close)
}

// at safely fetches a value from the provided indicator slice.
func at(values []float64, idx int) (float64, bool) {
	if idx < 0 || idx >= len(values) {
		return 0, false
	}

	return values[idx], true
}

// RSIAt returns the RSI value at the provided index and whether it is defined.
func (s *Series) RSIAt(idx int) (float64, bool) {
	if idx < s.params.RSIPeriod {
		return 0, false
	}

	return at(s.RSI, idx)
}

// EMAShortAt returns the short EMA value at the provided index and whether it
// is defined.
func (s *Series) EMAShortAt(idx int) (float64, bool) {
	if idx < s.params.EMAShortPeriod-1 {
		return 0, false
	}

	return at(s.EMAShort, idx)
}

// EMALongAt returns the long EMA value at the provided index and whether it
// is defined.
func (s *Series) EMALongAt(idx int) (float64, bool) {
	if idx < s.params.EMALongPeriod-1 {
		return 0, false
	}

	return at(s.EMALong, idx)
}

// MACDHistAt returns the MACD histogram value at the provided index and
// whether it is defined.
func (s *Series) MACDHistAt(idx int) (float64, bool) {
	// The histogram needs the slow EMA plus the signal smoothing to settle.
	if idx < s.params.MACDSlow+s.params.MACDSignal-2 {
		return 0, false
	}

	return at(s.MACDHist, idx)
}

// BollingerAt returns the bollinger upper and lower band values at the
// provided index and whether they are defined.
func (s *Series) BollingerAt(idx int) (float64, float64, bool) {
	if idx < s.params.BollingerPeriod-1 {
		return 0, 0, false
	}

	upper, okUpper := at(s.BBUpper, idx)
	lower, okLower := at(s.BBLower, idx)

	return upper, lower, okUpper && okLower
}

// VolumeSMAAt returns the rolling volume average at the provided index and
// whether it is defined.
func (s *Series) VolumeSMAAt(idx int) (float64, bool) {
	if idx < s.params.VolumeSMAPeriod-1 {
		return 0, false
	}

	return at(s.VolumeSMA, idx)
}
