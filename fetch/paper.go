package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/draeven/tradebot/shared"
)

// defaultPaperBalance is the starting quote balance for simulated accounts.
const defaultPaperBalance = 10_000

// PaperConfig represents the configuration for the paper trading client.
type PaperConfig struct {
	// Data supplies live market data for the simulation.
	Data shared.ExchangeClient
	// QuoteAsset is the asset the simulated balance is held in.
	QuoteAsset string
	// Balance is the starting quote balance, defaults to defaultPaperBalance.
	Balance float64
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *PaperConfig) Validate() error {
	var errs error

	if cfg.Data == nil {
		errs = errors.Join(errs, fmt.Errorf("market data client cannot be nil"))
	}
	if cfg.QuoteAsset == "" {
		errs = errors.Join(errs, fmt.Errorf("quote asset cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// PaperClient represents a simulated exchange. Market data passes through to
// the backing client, orders fill instantly at the current market price
// against a simulated balance. It keeps live strategy runs honest without
// touching real funds.
type PaperClient struct {
	cfg *PaperConfig

	mtx      sync.Mutex
	balances map[string]float64
}

// Ensure the PaperClient implements the ExchangeClient interface.
var _ shared.ExchangeClient = (*PaperClient)(nil)

// NewPaperClient instantiates a new paper trading client.
func NewPaperClient(cfg *PaperConfig) (*PaperClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Balance == 0 {
		cfg.Balance = defaultPaperBalance
	}

	return &PaperClient{
		cfg: cfg,
		balances: map[string]float64{
			cfg.QuoteAsset: cfg.Balance,
		},
	}, nil
}

// CurrentPrice fetches the last trade price for the provided symbol.
func (c *PaperClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	return c.cfg.Data.CurrentPrice(ctx, symbol)
}

// HistoricalCandles fetches historical candles for the provided symbol.
func (c *PaperClient) HistoricalCandles(ctx context.Context, symbol string, timeframe shared.Timeframe, limit int) ([]shared.Candlestick, error) {
	return c.cfg.Data.HistoricalCandles(ctx, symbol, timeframe, limit)
}

// baseAsset returns the base asset of the provided symbol.
func (c *PaperClient) baseAsset(symbol string) string {
	return strings.TrimSuffix(symbol, c.cfg.QuoteAsset)
}

// PlaceMarketOrder fills a simulated market order at the current market
// price, debiting and crediting the simulated balances.
func (c *PaperClient) PlaceMarketOrder(ctx context.Context, symbol string, side shared.Side, quantity float64) (*shared.Order, error) {
	price, err := c.cfg.Data.CurrentPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching fill price: %w", err)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	base := c.baseAsset(symbol)
	cost := price * quantity

	switch side {
	case shared.SideBuy:
		if c.balances[c.cfg.QuoteAsset] < cost {
			return nil, fmt.Errorf("insufficient %s balance: have %f, need %f",
				c.cfg.QuoteAsset, c.balances[c.cfg.QuoteAsset], cost)
		}

		c.balances[c.cfg.QuoteAsset] -= cost
		c.balances[base] += quantity
	case shared.SideSell:
		if c.balances[base] < quantity {
			return nil, fmt.Errorf("insufficient %s balance: have %f, need %f",
				base, c.balances[base], quantity)
		}

		c.balances[base] -= quantity
		c.balances[c.cfg.QuoteAsset] += cost
	default:
		return nil, fmt.Errorf("unknown order side: %s", side)
	}

	order := &shared.Order{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
	}

	c.cfg.Logger.Info().Msgf("simulated %s fill: %.8f %s @ %f", side, quantity, symbol, price)

	return order, nil
}

// Balances fetches the simulated account balances keyed by asset.
func (c *PaperClient) Balances(_ context.Context) (map[string]float64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	balances := make(map[string]float64, len(c.balances))
	for asset, amount := range c.balances {
		balances[asset] = amount
	}

	return balances, nil
}
