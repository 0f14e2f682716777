package strategy

import (
	"testing"

	"github.com/peterldowns/testy/assert"

	"github.com/draeven/tradebot/shared"
)

func TestRSIOversoldBuysWhileFlat(t *testing.T) {
	strat := NewRSI(14, 70, 30)

	// A sustained decline pins RSI at the bottom of its range.
	candles := seriesCandles(fallingCloses(30, 200, 2))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Buy)

	// The same window emits no entry while already long.
	strat.SetPosition(150)
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}

func TestRSIOverboughtSellsWhileLong(t *testing.T) {
	strat := NewRSI(14, 70, 30)

	// A sustained rally pins RSI at the top of its range.
	candles := seriesCandles(risingCloses(30, 100, 2))

	// No exit while flat.
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)

	strat.SetPosition(100)
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Sell)
}

func TestRSIShortWindowHolds(t *testing.T) {
	strat := NewRSI(14, 70, 30)

	candles := seriesCandles(fallingCloses(14, 200, 2))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}
