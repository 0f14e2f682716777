package strategy

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/draeven/tradebot/shared"
)

// seriesCandles builds a synthetic candle series from the provided closes.
func seriesCandles(closes []float64) []shared.Candlestick {
	candles := make([]shared.Candlestick, len(closes))
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for idx := range closes {
		candles[idx] = shared.Candlestick{
			Open:      closes[idx],
			High:      closes[idx] + 1,
			Low:       closes[idx] - 1,
			Close:     closes[idx],
			Volume:    100,
			Timestamp: start.Add(time.Duration(idx) * time.Minute),
		}
	}

	return candles
}

// risingCloses builds a strictly increasing close series.
func risingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for idx := range closes {
		closes[idx] = start + float64(idx)*step
	}

	return closes
}

// fallingCloses builds a strictly decreasing close series.
func fallingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for idx := range closes {
		closes[idx] = start - float64(idx)*step
	}

	return closes
}

// signalsOverWindows evaluates the strategy over every window prefix of at
// least minBars candles and collects the emitted signals.
func signalsOverWindows(strat Strategy, candles []shared.Candlestick, minBars int) []shared.Signal {
	signals := make([]shared.Signal, 0, len(candles))
	for k := minBars; k <= len(candles); k++ {
		signals = append(signals, strat.Evaluate(Window{Series: candles[:k]}))
	}

	return signals
}

func containsSignal(signals []shared.Signal, want shared.Signal) bool {
	for _, signal := range signals {
		if signal == want {
			return true
		}
	}

	return false
}

func TestPositionState(t *testing.T) {
	var pos position
	assert.False(t, pos.InLong())
	assert.Equal(t, pos.EntryPrice(), float64(0))

	pos.SetPosition(123.45)
	assert.True(t, pos.InLong())
	assert.Equal(t, pos.EntryPrice(), 123.45)

	pos.ClearPosition()
	assert.False(t, pos.InLong())
	assert.Equal(t, pos.EntryPrice(), float64(0))
}

func TestCrossHelpers(t *testing.T) {
	tests := []struct {
		name                 string
		prevFast, prevSlow   float64
		curFast, curSlow     float64
		wantAbove, wantBelow bool
	}{
		{
			name:     "crossed above",
			prevFast: 9, prevSlow: 10,
			curFast: 11, curSlow: 10,
			wantAbove: true,
		},
		{
			name:     "touch then break above",
			prevFast: 10, prevSlow: 10,
			curFast: 10.01, curSlow: 10,
			wantAbove: true,
		},
		{
			name:     "already above, no cross",
			prevFast: 11, prevSlow: 10,
			curFast: 12, curSlow: 10,
		},
		{
			name:     "equal on current bar is not a cross",
			prevFast: 9, prevSlow: 10,
			curFast: 10, curSlow: 10,
		},
		{
			name:     "crossed below",
			prevFast: 11, prevSlow: 10,
			curFast: 9, curSlow: 10,
			wantBelow: true,
		},
		{
			name:     "already below, no cross",
			prevFast: 9, prevSlow: 10,
			curFast: 8, curSlow: 10,
		},
	}

	for _, test := range tests {
		above := crossedAbove(test.prevFast, test.prevSlow, test.curFast, test.curSlow)
		below := crossedBelow(test.prevFast, test.prevSlow, test.curFast, test.curSlow)
		if above != test.wantAbove {
			t.Errorf("%s: expected crossedAbove %v, got %v", test.name, test.wantAbove, above)
		}
		if below != test.wantBelow {
			t.Errorf("%s: expected crossedBelow %v, got %v", test.name, test.wantBelow, below)
		}
	}
}

func TestShortWindowsHold(t *testing.T) {
	// Every variant resolves a window shorter than its lookback to Hold.
	candles := seriesCandles(fallingCloses(5, 100, 1))

	strategies := []Strategy{
		NewRSI(14, 70, 30),
		NewEMACross(9, 21),
		NewCombined(nil),
		NewScalp(),
		NewPulse(),
	}

	for _, strat := range strategies {
		assert.Equal(t, strat.Evaluate(Window{Series: candles}), shared.Hold)
		assert.Equal(t, strat.Evaluate(Window{}), shared.Hold)
	}

	mtf := NewMTFImpulse()
	assert.Equal(t, mtf.Evaluate(Window{HTF: candles, LTF: candles}), shared.Hold)
}
