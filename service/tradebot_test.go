package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"

	"github.com/draeven/tradebot/ledger"
	"github.com/draeven/tradebot/shared"
	"github.com/draeven/tradebot/strategy"
)

func baseConfig(t *testing.T) *TradeBotConfig {
	t.Helper()

	return &TradeBotConfig{
		Symbol:            "BTCUSDT",
		Quantity:          0.001,
		StrategyKind:      strategy.CombinedKind,
		StopLossPercent:   2,
		TakeProfitPercent: 4,
		StoragePath:       filepath.Join(t.TempDir(), "trades.json"),
		ReadOnly:          true,
	}
}

func TestTradeBotConfigValidation(t *testing.T) {
	// Read-only mode needs no credentials.
	cfg := baseConfig(t)
	assert.NoError(t, cfg.Validate())

	// Live trading requires credentials.
	cfg.ReadOnly = false
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "key"
	cfg.APISecret = "secret"
	assert.NoError(t, cfg.Validate())

	// Core inputs are always required.
	cfg.Symbol = ""
	cfg.Quantity = 0
	cfg.StoragePath = ""
	assert.Error(t, cfg.Validate())
}

func TestNewTradeBotWiring(t *testing.T) {
	cfg := baseConfig(t)
	service, err := NewTradeBot(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, service.bot)
	assert.NotNil(t, service.analyzer)
	assert.NotNil(t, service.priceCache)
	assert.Equal(t, service.strategy.Name(), "Combined RSI + EMA Strategy")

	// The evaluation interval defaulted.
	assert.Equal(t, cfg.EvaluationSeconds, 60)
}

func TestNewTradeBotRejectsUnknownTimeframe(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Timeframe = "3m"
	_, err := NewTradeBot(cfg)
	assert.Error(t, err)
}

func TestTradeBotStatus(t *testing.T) {
	cfg := baseConfig(t)
	service, err := NewTradeBot(cfg)
	assert.NoError(t, err)

	// No price has been cached and the ledger is empty.
	status, err := service.Status()
	assert.NoError(t, err)
	assert.Equal(t, status.Symbol, "BTCUSDT")
	assert.False(t, status.PriceKnown)
	assert.False(t, status.InPosition)
	assert.Equal(t, status.TradeCount, 0)

	// Recorded trades show up in the status view.
	_, err = service.store.OpenTrade(ledger.OpenParams{
		Symbol:     "BTCUSDT",
		Side:       shared.SideBuy,
		Quantity:   1,
		EntryPrice: 100,
	})
	assert.NoError(t, err)

	status, err = service.Status()
	assert.NoError(t, err)
	assert.Equal(t, status.TradeCount, 1)
}

func TestTradeBotRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := baseConfig(t)
	service, err := NewTradeBot(cfg)
	assert.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- service.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second * 15):
		t.Fatal("service did not stop on cancellation")
	}
}
