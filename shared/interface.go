package shared

import (
	"context"
)

// Order represents a filled exchange order.
type Order struct {
	ID       string
	Symbol   string
	Side     Side
	Quantity float64
	Price    float64
}

// ExchangeClient defines the requirements for interacting with a market exchange.
type ExchangeClient interface {
	// CurrentPrice fetches the last trade price for the provided symbol.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	// HistoricalCandles fetches historical candles for the provided symbol,
	// ordered oldest first, at most limit entries.
	HistoricalCandles(ctx context.Context, symbol string, timeframe Timeframe, limit int) ([]Candlestick, error)
	// PlaceMarketOrder places a market order for the provided symbol.
	PlaceMarketOrder(ctx context.Context, symbol string, side Side, quantity float64) (*Order, error)
	// Balances fetches the account balances keyed by asset.
	Balances(ctx context.Context) (map[string]float64, error)
}
