package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

// RSI is a mean-reversion strategy trading RSI extremes: buy oversold while
// flat, sell overbought while long.
type RSI struct {
	position

	period     int
	overbought float64
	oversold   float64
}

// Ensure RSI implements the Strategy interface.
var _ Strategy = (*RSI)(nil)

// NewRSI initializes a new RSI strategy.
func NewRSI(period int, overbought, oversold float64) *RSI {
	return &RSI{
		period:     period,
		overbought: overbought,
		oversold:   oversold,
	}
}

// Name returns the strategy name.
func (s *RSI) Name() string {
	return "RSI Strategy"
}

// Evaluate generates a trading signal from the provided candle window.
func (s *RSI) Evaluate(window Window) shared.Signal {
	candles := window.Series
	if len(candles) <= s.period {
		return shared.Hold
	}

	series := indicator.Compute(candles, indicator.Params{RSIPeriod: s.period})

	rsi, ok := series.RSIAt(series.Len() - 1)
	if !ok {
		return shared.Hold
	}

	switch {
	case rsi < s.oversold && !s.InLong():
		return shared.Buy
	case rsi > s.overbought && s.InLong():
		return shared.Sell
	default:
		return shared.Hold
	}
}
