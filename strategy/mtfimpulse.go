package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

const (
	// Higher timeframe trend filter settings.
	mtfHTFRSIPeriod = 14
	mtfHTFEMAFast   = 21
	mtfHTFEMASlow   = 50

	// Lower timeframe momentum settings.
	mtfLTFRSIPeriod    = 7
	mtfLTFEMAFast      = 5
	mtfLTFEMASlow      = 13
	mtfLTFVolumePeriod = 8

	// mtfVolumeFactor is the multiple of the rolling volume average that
	// counts as a volume push on the lower timeframe.
	mtfVolumeFactor = 1.02

	// RSI bounds for the higher timeframe bias. Slightly lenient so trades
	// still occur: trend plus mild RSI confirmation.
	mtfBiasLongRSIFloor   = 45.0
	mtfBiasShortRSICeil   = 55.0
	mtfMomentumRSIMidline = 50.0
)

// bias represents the higher timeframe trend bias.
type bias int

const (
	noBias bias = iota
	longBias
	shortBias
)

// MTFImpulse aligns a higher timeframe trend filter with lower timeframe
// momentum entries: signals fire only when both timeframes agree.
type MTFImpulse struct {
	position
}

// Ensure MTFImpulse implements the Strategy and MultiTimeframer interfaces.
var (
	_ Strategy        = (*MTFImpulse)(nil)
	_ MultiTimeframer = (*MTFImpulse)(nil)
)

// NewMTFImpulse initializes a new multi-timeframe impulse strategy.
func NewMTFImpulse() *MTFImpulse {
	return &MTFImpulse{}
}

// Name returns the strategy name.
func (s *MTFImpulse) Name() string {
	return "MTF Impulse Strategy"
}

// Timeframes returns the higher and lower timeframes the strategy needs.
func (s *MTFImpulse) Timeframes() (shared.Timeframe, shared.Timeframe) {
	return shared.OneHour, shared.FiveMinute
}

// htfBias derives the higher timeframe trend bias from the provided EMA pair
// and RSI reading.
func htfBias(emaFast, emaSlow, rsi float64) bias {
	switch {
	case emaFast > emaSlow && rsi > mtfBiasLongRSIFloor:
		return longBias
	case emaFast < emaSlow && rsi < mtfBiasShortRSICeil:
		return shortBias
	default:
		return noBias
	}
}

// Evaluate generates a trading signal from the provided candle window. It
// returns Hold when either timeframe series is missing or too short, even if
// the other shows a strong signal.
func (s *MTFImpulse) Evaluate(window Window) shared.Signal {
	htfCandles, ltfCandles := window.HTF, window.LTF
	if len(htfCandles) < mtfHTFEMASlow || len(ltfCandles) < mtfLTFEMASlow+1 {
		return shared.Hold
	}

	htf := indicator.Compute(htfCandles, indicator.Params{
		RSIPeriod:      mtfHTFRSIPeriod,
		EMAShortPeriod: mtfHTFEMAFast,
		EMALongPeriod:  mtfHTFEMASlow,
	})

	htfLast := htf.Len() - 1
	htfFast, okA := htf.EMAShortAt(htfLast)
	htfSlow, okB := htf.EMALongAt(htfLast)
	htfRSI, okC := htf.RSIAt(htfLast)
	if !okA || !okB || !okC {
		return shared.Hold
	}

	trendBias := htfBias(htfFast, htfSlow, htfRSI)
	if trendBias == noBias {
		return shared.Hold
	}

	ltf := indicator.Compute(ltfCandles, indicator.Params{
		RSIPeriod:       mtfLTFRSIPeriod,
		EMAShortPeriod:  mtfLTFEMAFast,
		EMALongPeriod:   mtfLTFEMASlow,
		VolumeSMAPeriod: mtfLTFVolumePeriod,
	})

	ltfLast := ltf.Len() - 1
	ltfFast, okA := ltf.EMAShortAt(ltfLast)
	ltfSlow, okB := ltf.EMALongAt(ltfLast)
	ltfRSI, okC := ltf.RSIAt(ltfLast)
	if !okA || !okB || !okC {
		return shared.Hold
	}

	price := ltf.Close[ltfLast]
	momentumPush := ltfLast >= 2 && price > ltf.Close[ltfLast-1] &&
		ltf.Close[ltfLast-1] > ltf.Close[ltfLast-2]

	var volumePush bool
	if volumeSMA, ok := ltf.VolumeSMAAt(ltfLast); ok && volumeSMA > 0 {
		volumePush = ltf.Volume[ltfLast] >= volumeSMA*mtfVolumeFactor
	}

	switch trendBias {
	case longBias:
		if ltfFast > ltfSlow && (momentumPush || volumePush || ltfRSI > mtfMomentumRSIMidline) {
			return shared.Buy
		}
	case shortBias:
		if ltfFast < ltfSlow && (momentumPush || volumePush || ltfRSI < mtfMomentumRSIMidline) {
			return shared.Sell
		}
	}

	return shared.Hold
}
