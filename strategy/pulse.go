package strategy

import (
	"github.com/draeven/tradebot/indicator"
	"github.com/draeven/tradebot/shared"
)

const (
	pulseRSIPeriod    = 6
	pulseEMAShort     = 3
	pulseEMALong      = 8
	pulseVolumePeriod = 5

	// pulseVolumeFactor is the multiple of the rolling volume average that
	// counts as a volume push.
	pulseVolumeFactor = 1.1

	// RSI bounds for momentum confirmation and exit.
	pulseRSIEntryFloor = 55.0
	pulseRSIExitFloor  = 45.0
)

// Pulse is an aggressive momentum follower: it enters quickly while flat on
// short term momentum and exits as soon as the momentum fades.
type Pulse struct {
	position
}

// Ensure Pulse implements the Strategy interface.
var _ Strategy = (*Pulse)(nil)

// NewPulse initializes a new momentum pulse strategy.
func NewPulse() *Pulse {
	return &Pulse{}
}

// Name returns the strategy name.
func (s *Pulse) Name() string {
	return "Momentum Pulse Strategy"
}

// Evaluate generates a trading signal from the provided candle window.
func (s *Pulse) Evaluate(window Window) shared.Signal {
	candles := window.Series
	if len(candles) < pulseEMALong+2 {
		return shared.Hold
	}

	series := indicator.Compute(candles, indicator.Params{
		RSIPeriod:       pulseRSIPeriod,
		EMAShortPeriod:  pulseEMAShort,
		EMALongPeriod:   pulseEMALong,
		VolumeSMAPeriod: pulseVolumePeriod,
	})

	last := series.Len() - 1

	rsi, okRSI := series.RSIAt(last)
	emaShort, okA := series.EMAShortAt(last)
	emaLong, okB := series.EMALongAt(last)
	if !okRSI || !okA || !okB {
		return shared.Hold
	}

	price := series.Close[last]

	bullishTrend := emaShort > emaLong && price > emaLong
	momentumPush := price > series.Close[last-1] && series.Close[last-1] > series.Close[last-2]

	var volumePush bool
	if volumeSMA, ok := series.VolumeSMAAt(last); ok && volumeSMA > 0 {
		volumePush = series.Volume[last] >= volumeSMA*pulseVolumeFactor
	}

	if !s.InLong() {
		if bullishTrend && rsi > pulseRSIEntryFloor && (momentumPush || volumePush) {
			return shared.Buy
		}

		return shared.Hold
	}

	// Exit as soon as the momentum fades.
	if price < emaShort || rsi < pulseRSIExitFloor {
		return shared.Sell
	}

	return shared.Hold
}
