package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

const (
	// Aggressive settings tuned for one minute candles.
	scalpRSIPeriod     = 7
	scalpRSIOverbought = 65.0
	scalpRSIOversold   = 35.0
	scalpEMAShort      = 5
	scalpEMALong       = 12

	// A single strong vote is enough on the one minute timeframe.
	scalpScoreThreshold = 1.0
)

// Scalp is an aggressive one minute scalping strategy combining a short RSI
// with a fast EMA pair, acting on a single confirming vote.
type Scalp struct {
	position
}

// Ensure Scalp implements the Strategy interface.
var _ Strategy = (*Scalp)(nil)

// NewScalp initializes a new one minute scalping strategy.
func NewScalp() *Scalp {
	return &Scalp{}
}

// Name returns the strategy name.
func (s *Scalp) Name() string {
	return "1-Minute Fast Strategy"
}

// Evaluate generates a trading signal from the provided candle window.
func (s *Scalp) Evaluate(window Window) shared.Signal {
	candles := window.Series
	if len(candles) < scalpEMALong+1 {
		return shared.Hold
	}

	series := indicator.Compute(candles, indicator.Params{
		RSIPeriod:      scalpRSIPeriod,
		EMAShortPeriod: scalpEMAShort,
		EMALongPeriod:  scalpEMALong,
	})

	last := series.Len() - 1

	rsi, okRSI := series.RSIAt(last)
	curShort, okA := series.EMAShortAt(last)
	curLong, okB := series.EMALongAt(last)
	prevShort, okC := series.EMAShortAt(last - 1)
	prevLong, okD := series.EMALongAt(last - 1)
	if !okRSI || !okA || !okB || !okC || !okD {
		return shared.Hold
	}

	var bullish, bearish float64

	switch {
	case rsi < scalpRSIOversold:
		bullish += extremeWeight
	case rsi > scalpRSIOverbought:
		bearish += extremeWeight
	}

	switch {
	case crossedAbove(prevShort, prevLong, curShort, curLong):
		bullish += crossWeight
	case crossedBelow(prevShort, prevLong, curShort, curLong):
		bearish += crossWeight
	}

	switch {
	case curShort > curLong:
		bullish += trendWeight
	default:
		bearish += trendWeight
	}

	switch {
	case bullish >= scalpScoreThreshold && !s.InLong():
		return shared.Buy
	case bearish >= scalpScoreThreshold && s.InLong():
		return shared.Sell
	default:
		return shared.Hold
	}
}
