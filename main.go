package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/draeven/tradebot/service"
	"github.com/draeven/tradebot/strategy"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	kind, err := strategy.ParseKind(cfg.Strategy)
	if err != nil {
		log.Printf("parsing strategy: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tradeBotCfg := service.TradeBotConfig{
		Symbol:            cfg.Symbol,
		Quantity:          cfg.Quantity,
		StrategyKind:      kind,
		Timeframe:         cfg.Timeframe,
		StopLossPercent:   cfg.StopLossPercent,
		TakeProfitPercent: cfg.TakeProfitPercent,
		EvaluationSeconds: cfg.EvaluationSeconds,
		StoragePath:       cfg.StoragePath,
		APIKey:            cfg.APIKey,
		APISecret:         cfg.APISecret,
		BaseURL:           cfg.BaseURL,
		ReadOnly:          cfg.ReadOnly,
	}
	tradeBot, err := service.NewTradeBot(&tradeBotCfg)
	if err != nil {
		log.Printf("creating trade bot service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	err = tradeBot.Run(ctx)
	if err != nil {
		log.Printf("running trade bot service: %v", err)
	}
}
