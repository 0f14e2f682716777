package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/draeven/tradebot/shared"
)

// PriceCacheConfig represents the configuration for the price cache.
type PriceCacheConfig struct {
	// Symbol is the market being tracked.
	Symbol string
	// Exchange is the exchange client prices are fetched from.
	Exchange shared.ExchangeClient
	// Now returns the current time, defaults to time.Now. Exposed for tests.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *PriceCacheConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Exchange == nil {
		errs = errors.Join(errs, fmt.Errorf("exchange client cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// PriceCache holds the most recently observed market price so status
// reporting never has to block on the exchange. A refresh failure keeps the
// previous snapshot.
type PriceCache struct {
	cfg *PriceCacheConfig

	mtx       sync.RWMutex
	price     float64
	updatedAt time.Time
}

// NewPriceCache initializes a new price cache.
func NewPriceCache(cfg *PriceCacheConfig) (*PriceCache, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &PriceCache{
		cfg: cfg,
	}, nil
}

// Refresh fetches the current market price into the cache.
func (p *PriceCache) Refresh(ctx context.Context) error {
	price, err := p.cfg.Exchange.CurrentPrice(ctx, p.cfg.Symbol)
	if err != nil {
		p.cfg.Logger.Warn().Err(err).Msg("refreshing price cache")
		return err
	}

	p.mtx.Lock()
	p.price = price
	p.updatedAt = p.cfg.Now()
	p.mtx.Unlock()

	return nil
}

// Snapshot returns the cached price and its observation time. The ok flag is
// false until the first successful refresh.
func (p *PriceCache) Snapshot() (price float64, updatedAt time.Time, ok bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return p.price, p.updatedAt, !p.updatedAt.IsZero()
}
