package strategy

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/draeven/tradebot/shared"
)

func TestPulseMomentumBuysWhileFlat(t *testing.T) {
	strat := NewPulse()

	// Consecutive higher closes with the trend up and a strong RSI.
	candles := seriesCandles(risingCloses(20, 100, 1))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Buy)
}

func TestPulseVolumePushBuysWhileFlat(t *testing.T) {
	strat := NewPulse()

	// A rising trend without consecutive higher closes at the end, but with
	// a volume spike on the last bar.
	closes := risingCloses(20, 100, 1)
	closes[len(closes)-1] = closes[len(closes)-2] // stall the final close
	candles := seriesCandles(closes)
	for idx := range candles {
		candles[idx].Volume = 100
	}
	candles[len(candles)-1].Volume = 500

	signal := strat.Evaluate(Window{Series: candles})
	assert.Equal(t, signal, shared.Buy)
}

func TestPulseFadingMomentumSellsWhileLong(t *testing.T) {
	strat := NewPulse()
	strat.SetPosition(100)

	// A rally rolling over into a decline drops the close below the fast
	// EMA and drags the short RSI down.
	closes := append(risingCloses(15, 100, 1), fallingCloses(5, 114, 2)...)
	candles := seriesCandles(closes)

	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Sell)
}

func TestPulseHoldsWhileLongInUptrend(t *testing.T) {
	strat := NewPulse()
	strat.SetPosition(100)

	candles := seriesCandles(risingCloses(20, 100, 1))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}

func TestPulseShortWindowHolds(t *testing.T) {
	strat := NewPulse()

	candles := seriesCandles(risingCloses(9, 100, 1))
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
}

func TestPulseZeroVolumeSeries(t *testing.T) {
	strat := NewPulse()

	// Zero volume disables the volume push without tripping a division.
	closes := risingCloses(20, 100, 1)
	candles := make([]shared.Candlestick, len(closes))
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for idx := range closes {
		candles[idx] = shared.Candlestick{
			Close:     closes[idx],
			Timestamp: start.Add(time.Duration(idx) * time.Minute),
		}
	}

	// Momentum push still carries the entry.
	assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Buy)
}
