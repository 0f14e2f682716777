package strategy

import (
	"testing"

	"github.com/peterldowns/testy/assert"

	"github.com/draeven/tradebot/shared"
)

func TestEMACrossGoldenCrossBuysWhileFlat(t *testing.T) {
	strat := NewEMACross(9, 21)

	// A decline followed by a sharp rally forces the short EMA to cross
	// above the long EMA somewhere in the rally.
	closes := append(fallingCloses(40, 200, 1), risingCloses(30, 160, 3)...)
	candles := seriesCandles(closes)

	signals := signalsOverWindows(strat, candles, 22)
	assert.True(t, containsSignal(signals, shared.Buy))
	assert.False(t, containsSignal(signals, shared.Sell))
}

func TestEMACrossDeathCrossSellsWhileLong(t *testing.T) {
	strat := NewEMACross(9, 21)
	strat.SetPosition(100)

	// A rally followed by a sharp decline forces the mirror crossing.
	closes := append(risingCloses(40, 100, 1), fallingCloses(30, 140, 3)...)
	candles := seriesCandles(closes)

	signals := signalsOverWindows(strat, candles, 22)
	assert.True(t, containsSignal(signals, shared.Sell))
	assert.False(t, containsSignal(signals, shared.Buy))
}

func TestEMACrossNoRepeatWhileCrossed(t *testing.T) {
	strat := NewEMACross(9, 21)

	// A steady rally keeps the short EMA above the long EMA with no strict
	// crossing between consecutive bars late in the series.
	candles := seriesCandles(risingCloses(80, 100, 1))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}

func TestEMACrossShortWindowHolds(t *testing.T) {
	strat := NewEMACross(9, 21)

	candles := seriesCandles(risingCloses(21, 100, 1))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}
