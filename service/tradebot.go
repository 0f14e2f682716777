// Package service wires the exchange client, ledger, strategy, analytics and
// the position controller into a running trade bot.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/draeven/tradebot/analytics"
	"github.com/draeven/tradebot/bot"
	"github.com/draeven/tradebot/fetch"
	"github.com/draeven/tradebot/ledger"
	"github.com/draeven/tradebot/shared"
	"github.com/draeven/tradebot/strategy"
)

const (
	// priceRefreshSeconds is the price cache refresh interval.
	priceRefreshSeconds = 10
	// defaultEvaluationSeconds is the default evaluation interval.
	defaultEvaluationSeconds = 60
)

// TradeBotConfig represents the configuration struct for the trade bot
// service.
type TradeBotConfig struct {
	// Symbol is the market being traded.
	Symbol string
	// Quantity is the base asset quantity per trade.
	Quantity float64
	// StrategyKind selects the signal strategy.
	StrategyKind strategy.Kind
	// Timeframe is the candle interval code for single timeframe strategies,
	// defaults to the strategy kind's tuned timeframe.
	Timeframe string
	// StopLossPercent is the maximum tolerated loss relative to entry.
	StopLossPercent float64
	// TakeProfitPercent is the profit target relative to entry.
	TakeProfitPercent float64
	// EvaluationSeconds is the evaluation interval, defaults to
	// defaultEvaluationSeconds.
	EvaluationSeconds int
	// StoragePath is the filepath of the trade ledger.
	StoragePath string
	// APIKey is the exchange API key.
	APIKey string
	// APISecret is the exchange API secret.
	APISecret string
	// BaseURL overrides the exchange api url, defaults to the testnet.
	BaseURL string
	// ReadOnly runs the bot against simulated fills, no exchange orders.
	ReadOnly bool
}

// Validate asserts the config has sane inputs. Exchange credentials are only
// required when the service places real orders.
func (cfg *TradeBotConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Quantity <= 0 {
		errs = errors.Join(errs, fmt.Errorf("quantity must be positive"))
	}
	if cfg.StoragePath == "" {
		errs = errors.Join(errs, fmt.Errorf("storage path cannot be an empty string"))
	}
	if !cfg.ReadOnly {
		if cfg.APIKey == "" {
			errs = errors.Join(errs, fmt.Errorf("api key cannot be an empty string"))
		}
		if cfg.APISecret == "" {
			errs = errors.Join(errs, fmt.Errorf("api secret cannot be an empty string"))
		}
	}

	return errs
}

// TradeBot represents the trade bot service.
type TradeBot struct {
	cfg          *TradeBotConfig
	exchange     shared.ExchangeClient
	priceCache   *fetch.PriceCache
	store        *ledger.Store
	strategy     strategy.Strategy
	bot          *bot.Bot
	analyzer     *analytics.Analyzer
	jobScheduler *gocron.Scheduler
	logger       *zerolog.Logger
}

// NewTradeBot initializes a new trade bot service.
func NewTradeBot(cfg *TradeBotConfig) (*TradeBot, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.EvaluationSeconds == 0 {
		cfg.EvaluationSeconds = defaultEvaluationSeconds
	}

	timeframe := cfg.StrategyKind.DefaultTimeframe()
	if cfg.Timeframe != "" {
		timeframe, err = shared.ParseTimeframe(cfg.Timeframe)
		if err != nil {
			return nil, fmt.Errorf("parsing timeframe: %w", err)
		}
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "tradebot").Logger()

	binance, err := fetch.NewBinanceClient(&fetch.BinanceConfig{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating binance client: %w", err)
	}

	var exchange shared.ExchangeClient = binance
	if cfg.ReadOnly {
		// Market data still comes from the exchange, fills are simulated.
		paperLogger := logger.With().Str("component", "paper").Logger()
		exchange, err = fetch.NewPaperClient(&fetch.PaperConfig{
			Data:       binance,
			QuoteAsset: "USDT",
			Logger:     &paperLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating paper client: %w", err)
		}
	}

	cacheLogger := logger.With().Str("component", "pricecache").Logger()
	priceCache, err := fetch.NewPriceCache(&fetch.PriceCacheConfig{
		Symbol:   cfg.Symbol,
		Exchange: exchange,
		Logger:   &cacheLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating price cache: %w", err)
	}

	storeLogger := logger.With().Str("component", "ledger").Logger()
	store, err := ledger.NewStore(&ledger.StoreConfig{
		Path:   cfg.StoragePath,
		Logger: &storeLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating trade ledger: %w", err)
	}

	strat, err := strategy.New(cfg.StrategyKind, strategy.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("creating strategy: %w", err)
	}

	botLogger := logger.With().Str("component", "bot").Logger()
	tradeBot, err := bot.NewBot(&bot.BotConfig{
		Symbol:            cfg.Symbol,
		Quantity:          cfg.Quantity,
		Strategy:          strat,
		Exchange:          exchange,
		Ledger:            store,
		StopLossPercent:   cfg.StopLossPercent,
		TakeProfitPercent: cfg.TakeProfitPercent,
		Timeframe:         timeframe,
		Logger:            &botLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	analyzer, err := analytics.NewAnalyzer(&analytics.AnalyzerConfig{
		Ledger: store,
	})
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}

	service := &TradeBot{
		cfg:          cfg,
		exchange:     exchange,
		priceCache:   priceCache,
		store:        store,
		strategy:     strat,
		bot:          tradeBot,
		analyzer:     analyzer,
		jobScheduler: gocron.NewScheduler(time.UTC),
		logger:       &logger,
	}

	return service, nil
}

// Status represents a point in time view of the running service.
type Status struct {
	// Symbol is the market being traded.
	Symbol string
	// Price is the most recently cached market price.
	Price float64
	// PriceUpdatedAt is the observation time of the cached price.
	PriceUpdatedAt time.Time
	// PriceKnown reports whether a price has been cached yet.
	PriceKnown bool
	// InPosition reports whether the controller holds a position.
	InPosition bool
	// TradeCount is the total number of trades recorded in the ledger.
	TradeCount int
}

// Status reports the current service state from the price cache, the
// controller and the ledger.
func (tb *TradeBot) Status() (*Status, error) {
	trades, err := tb.store.AllTrades()
	if err != nil {
		return nil, fmt.Errorf("fetching trades: %w", err)
	}

	price, updatedAt, ok := tb.priceCache.Snapshot()

	return &Status{
		Symbol:         tb.cfg.Symbol,
		Price:          price,
		PriceUpdatedAt: updatedAt,
		PriceKnown:     ok,
		InPosition:     tb.bot.InPosition(),
		TradeCount:     len(trades),
	}, nil
}

// logStatus logs the cached market price and position state.
func (tb *TradeBot) logStatus() {
	status, err := tb.Status()
	if err != nil {
		tb.logger.Error().Err(err).Msg("fetching status")
		return
	}

	if !status.PriceKnown {
		return
	}

	tb.logger.Info().Msgf("%s @ %f (as of %s), in position: %v, trades: %d",
		status.Symbol, status.Price, status.PriceUpdatedAt.Format(time.RFC3339),
		status.InPosition, status.TradeCount)
}

// evaluate runs one evaluation cycle. Errors abort the cycle and are retried
// on the next tick.
func (tb *TradeBot) evaluate(ctx context.Context) {
	eval, err := tb.bot.EvaluateOnce(ctx)
	if err != nil {
		tb.logger.Error().Err(err).Msg("evaluation cycle")
		return
	}

	if eval.Action != bot.Hold {
		tb.logger.Info().Msgf("%s: %s @ %f", tb.strategy.Name(), eval.Action, eval.Price)
	}

	tb.logStatus()
}

// logSessionStats logs the all time performance summary.
func (tb *TradeBot) logSessionStats() {
	stats, err := tb.analyzer.AllTimeStats()
	if err != nil {
		tb.logger.Error().Err(err).Msg("fetching session stats")
		return
	}

	tb.logger.Info().Msgf("all time: %d trades, %d wins, %d losses, p/l %.2f (win rate %.1f%%)",
		stats.TotalTrades, stats.WinningTrades, stats.LosingTrades,
		stats.TotalProfitLoss, stats.WinRate)
}

// Run handles the lifecycle processes of the trade bot service.
func (tb *TradeBot) Run(ctx context.Context) error {
	_, err := tb.jobScheduler.Every(priceRefreshSeconds).Seconds().Do(func() {
		// Refresh errors are logged by the cache and retried next tick.
		_ = tb.priceCache.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling price refresh: %w", err)
	}

	_, err = tb.jobScheduler.Every(tb.cfg.EvaluationSeconds).Seconds().Do(func() {
		tb.evaluate(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling evaluation: %w", err)
	}

	tb.logger.Info().Msgf("trading %s with %s, evaluating every %ds",
		tb.cfg.Symbol, tb.strategy.Name(), tb.cfg.EvaluationSeconds)

	tb.jobScheduler.StartAsync()

	<-ctx.Done()

	tb.jobScheduler.Stop()

	// Flatten with a fresh context, the run context is already cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	tb.bot.Stop(shutdownCtx)

	tb.logSessionStats()

	return nil
}
