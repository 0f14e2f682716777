package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

// EMACross is a trend-following strategy trading strict EMA crossovers: buy
// the golden cross while flat, sell the death cross while long.
type EMACross struct {
	position

	shortPeriod int
	longPeriod  int
}

// Ensure EMACross implements the Strategy interface.
var _ Strategy = (*EMACross)(nil)

// NewEMACross initializes a new EMA crossover strategy.
func NewEMACross(shortPeriod, longPeriod int) *EMACross {
	return &EMACross{
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
	}
}

// Name returns the strategy name.
func (s *EMACross) Name() string {
	return "EMA Crossover Strategy"
}

// Evaluate generates a trading signal from the provided candle window.
func (s *EMACross) Evaluate(window Window) shared.Signal {
	candles := window.Series
	if len(candles) < s.longPeriod+1 {
		return shared.Hold
	}

	series := indicator.Compute(candles, indicator.Params{
		EMAShortPeriod: s.shortPeriod,
		EMALongPeriod:  s.longPeriod,
	})

	last := series.Len() - 1

	curShort, okA := series.EMAShortAt(last)
	curLong, okB := series.EMALongAt(last)
	prevShort, okC := series.EMAShortAt(last - 1)
	prevLong, okD := series.EMALongAt(last - 1)
	if !okA || !okB || !okC || !okD {
		return shared.Hold
	}

	switch {
	case crossedAbove(prevShort, prevLong, curShort, curLong) && !s.InLong():
		return shared.Buy
	case crossedBelow(prevShort, prevLong, curShort, curLong) && s.InLong():
		return shared.Sell
	default:
		return shared.Hold
	}
}
