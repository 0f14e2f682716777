package shared

import (
	"time"
)

// Candlestick represents a unit OHLCV candlestick for a symbol.
type Candlestick struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Timestamp is the open time of the candle.
	Timestamp time.Time

	// Metadata fields.
	Symbol    string
	Timeframe Timeframe
}

// Closes extracts the close price series from the provided candles.
func Closes(candles []Candlestick) []float64 {
	closes := make([]float64, len(candles))
	for idx := range candles {
		closes[idx] = candles[idx].Close
	}

	return closes
}

// Volumes extracts the volume series from the provided candles.
func Volumes(candles []Candlestick) []float64 {
	volumes := make([]float64, len(candles))
	for idx := range candles {
		volumes[idx] = candles[idx].Volume
	}

	return volumes
}
