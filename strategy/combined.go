package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

const (
	// Weighted vote contributions for the combined strategy.
	extremeWeight = 1.0
	crossWeight   = 1.0
	trendWeight   = 0.5
	bandWeight    = 0.5

	// MACD periods used for histogram zero-cross confirmation.
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9

	// Bollinger band settings.
	bollingerPeriod = 20
	bollingerStdDev = 2.0
)

// reading captures the indicator values feeding one weighted vote.
type reading struct {
	price float64
	rsi   float64

	curShort, curLong   float64
	prevShort, prevLong float64

	curHist, prevHist float64

	bbUpper, bbLower float64
}

// Combined confirms signals across RSI, EMA crossover, MACD and bollinger
// bands with a weighted vote. Acting requires the vote score to reach the
// configured threshold, which trades signal frequency for accuracy.
type Combined struct {
	position

	rsiPeriod      int
	rsiOverbought  float64
	rsiOversold    float64
	emaShortPeriod int
	emaLongPeriod  int
	scoreThreshold float64
}

// Ensure Combined implements the Strategy interface.
var _ Strategy = (*Combined)(nil)

// NewCombined initializes a new combined strategy.
func NewCombined(cfg *Config) *Combined {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Combined{
		rsiPeriod:      cfg.RSIPeriod,
		rsiOverbought:  cfg.RSIOverbought,
		rsiOversold:    cfg.RSIOversold,
		emaShortPeriod: cfg.EMAShortPeriod,
		emaLongPeriod:  cfg.EMALongPeriod,
		scoreThreshold: cfg.CombinedScoreThreshold,
	}
}

// Name returns the strategy name.
func (s *Combined) Name() string {
	return "Combined RSI + EMA Strategy"
}

// minBars returns the longest indicator lookback the strategy needs, plus the
// previous bar used for crossover detection.
func (s *Combined) minBars() int {
	min := s.emaLongPeriod
	if s.rsiPeriod+1 > min {
		min = s.rsiPeriod + 1
	}
	if macdSlowPeriod+macdSignalPeriod-1 > min {
		min = macdSlowPeriod + macdSignalPeriod - 1
	}
	if bollingerPeriod > min {
		min = bollingerPeriod
	}

	return min + 1
}

// score tallies the weighted bullish and bearish votes for the provided
// indicator reading. Accumulation is order independent.
func (s *Combined) score(r reading) (float64, float64) {
	var bullish, bearish float64

	// RSI extremes.
	switch {
	case r.rsi < s.rsiOversold:
		bullish += extremeWeight
	case r.rsi > s.rsiOverbought:
		bearish += extremeWeight
	}

	// Strict EMA crossover.
	switch {
	case crossedAbove(r.prevShort, r.prevLong, r.curShort, r.curLong):
		bullish += crossWeight
	case crossedBelow(r.prevShort, r.prevLong, r.curShort, r.curLong):
		bearish += crossWeight
	}

	// EMA trend direction without a crossover.
	switch {
	case r.curShort > r.curLong:
		bullish += trendWeight
	default:
		bearish += trendWeight
	}

	// MACD histogram zero-cross.
	switch {
	case r.prevHist < 0 && r.curHist > 0:
		bullish += crossWeight
	case r.prevHist > 0 && r.curHist < 0:
		bearish += crossWeight
	}

	// Price outside the bollinger bands.
	switch {
	case r.price < r.bbLower:
		bullish += bandWeight
	case r.price > r.bbUpper:
		bearish += bandWeight
	}

	return bullish, bearish
}

// decide collapses the vote scores into a signal, gated on position state.
func (s *Combined) decide(bullish, bearish float64) shared.Signal {
	switch {
	case bullish >= s.scoreThreshold && !s.InLong():
		return shared.Buy
	case bearish >= s.scoreThreshold && s.InLong():
		return shared.Sell
	default:
		return shared.Hold
	}
}

// Evaluate generates a trading signal from the provided candle window.
func (s *Combined) Evaluate(window Window) shared.Signal {
	candles := window.Series
	if len(candles) < s.minBars() {
		return shared.Hold
	}

	series := indicator.Compute(candles, indicator.Params{
		RSIPeriod:       s.rsiPeriod,
		EMAShortPeriod:  s.emaShortPeriod,
		EMALongPeriod:   s.emaLongPeriod,
		MACDFast:        macdFastPeriod,
		MACDSlow:        macdSlowPeriod,
		MACDSignal:      macdSignalPeriod,
		BollingerPeriod: bollingerPeriod,
		BollingerStdDev: bollingerStdDev,
	})

	last := series.Len() - 1

	rsi, okRSI := series.RSIAt(last)
	curShort, okA := series.EMAShortAt(last)
	curLong, okB := series.EMALongAt(last)
	prevShort, okC := series.EMAShortAt(last - 1)
	prevLong, okD := series.EMALongAt(last - 1)
	curHist, okE := series.MACDHistAt(last)
	prevHist, okF := series.MACDHistAt(last - 1)
	bbUpper, bbLower, okBands := series.BollingerAt(last)

	if !okRSI || !okA || !okB || !okC || !okD || !okE || !okF || !okBands {
		return shared.Hold
	}

	bullish, bearish := s.score(reading{
		price:     series.Close[last],
		rsi:       rsi,
		curShort:  curShort,
		curLong:   curLong,
		prevShort: prevShort,
		prevLong:  prevLong,
		curHist:   curHist,
		prevHist:  prevHist,
		bbUpper:   bbUpper,
		bbLower:   bbLower,
	})

	return s.decide(bullish, bearish)
}
