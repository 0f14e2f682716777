// Package bot implements the position and risk controller. It owns the single
// position invariant: at most one open position per symbol, every transition
// recorded in the ledger before the controller considers it done.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/draeven/tradebot/ledger"
	"github.com/draeven/tradebot/shared"
	"github.com/draeven/tradebot/strategy"
)

const (
	// defaultCandleLimit is the number of candles fetched per evaluation.
	defaultCandleLimit = 150

	// ltfCandleLimit is the number of lower timeframe candles fetched per
	// evaluation for multi-timeframe strategies.
	ltfCandleLimit = 120
)

// Action represents the outcome of one evaluation cycle.
type Action int

const (
	// None indicates the cycle did not complete an evaluation.
	None Action = iota
	// Hold indicates the strategy saw no actionable signal.
	Hold
	// Buy indicates the controller entered a position.
	Buy
	// Sell indicates the controller exited on a strategy signal.
	Sell
	// StopLoss indicates the controller exited on the stop loss floor.
	StopLoss
	// TakeProfit indicates the controller exited on the take profit ceiling.
	TakeProfit
)

// String stringifies the provided action.
func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Hold:
		return "hold"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case StopLoss:
		return "stop loss"
	case TakeProfit:
		return "take profit"
	default:
		return "unknown"
	}
}

// Evaluation represents the result of one evaluation cycle.
type Evaluation struct {
	// Action is the action taken during the cycle.
	Action Action
	// Price is the market price the cycle evaluated against.
	Price float64
	// InPosition reports whether the controller holds a position after the
	// cycle.
	InPosition bool
	// EntryPrice is the entry price of the held position, zero when flat.
	EntryPrice float64
	// TradeCount is the total number of trades recorded in the ledger after
	// the cycle.
	TradeCount int
}

// BotConfig represents the bot configuration.
type BotConfig struct {
	// Symbol is the market being traded.
	Symbol string
	// Quantity is the base asset quantity per trade.
	Quantity float64
	// Strategy is the signal generator driving entries and exits.
	Strategy strategy.Strategy
	// Exchange is the exchange client used for market data and orders.
	Exchange shared.ExchangeClient
	// Ledger is the durable trade store.
	Ledger *ledger.Store
	// QuoteAsset is the asset balance checked before an entry, defaults to a
	// guess from the symbol suffix.
	QuoteAsset string
	// StopLossPercent is the maximum tolerated loss relative to entry.
	StopLossPercent float64
	// TakeProfitPercent is the profit target relative to entry.
	TakeProfitPercent float64
	// Timeframe is the candle timeframe for single timeframe strategies.
	Timeframe shared.Timeframe
	// CandleLimit is the number of candles fetched per evaluation,
	// defaults to defaultCandleLimit.
	CandleLimit int
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *BotConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Quantity <= 0 {
		errs = errors.Join(errs, fmt.Errorf("quantity must be positive"))
	}
	if cfg.Strategy == nil {
		errs = errors.Join(errs, fmt.Errorf("strategy cannot be nil"))
	}
	if cfg.Exchange == nil {
		errs = errors.Join(errs, fmt.Errorf("exchange client cannot be nil"))
	}
	if cfg.Ledger == nil {
		errs = errors.Join(errs, fmt.Errorf("ledger cannot be nil"))
	}
	if cfg.StopLossPercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("stop loss percent cannot be negative"))
	}
	if cfg.TakeProfitPercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("take profit percent cannot be negative"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Bot is the position and risk controller for one symbol. Position state
// lives here and in the ledger; the strategy's position flag is derived from
// it on every transition.
type Bot struct {
	cfg *BotConfig

	mtx        sync.Mutex
	inPosition bool
	entryPrice float64
	tradeID    string
}

// NewBot initializes the position controller, recovering any open position
// recorded in the ledger so a restart cannot double up on entries.
func NewBot(cfg *BotConfig) (*Bot, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.CandleLimit == 0 {
		cfg.CandleLimit = defaultCandleLimit
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = inferQuoteAsset(cfg.Symbol)
	}

	bot := &Bot{
		cfg: cfg,
	}

	running, err := cfg.Ledger.RunningTrade(cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("recovering running trade: %w", err)
	}

	if running != nil {
		bot.inPosition = true
		bot.entryPrice = running.EntryPrice
		bot.tradeID = running.ID
		cfg.Strategy.SetPosition(running.EntryPrice)

		cfg.Logger.Info().Msgf("recovered open trade %s: entry %f", running.ID, running.EntryPrice)
	}

	return bot, nil
}

// InPosition reports whether the controller currently holds a position.
func (b *Bot) InPosition() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.inPosition
}

// inferQuoteAsset guesses the quote asset from the symbol suffix, used when
// no quote asset is configured.
func inferQuoteAsset(symbol string) string {
	if strings.HasSuffix(symbol, "USDT") {
		return "USDT"
	}

	return "BTC"
}

// tradeCount returns the total number of trades recorded in the ledger. A
// count failure is logged rather than surfaced, the count is informational.
func (b *Bot) tradeCount() int {
	trades, err := b.cfg.Ledger.AllTrades()
	if err != nil {
		b.cfg.Logger.Warn().Err(err).Msg("counting trades")
		return 0
	}

	return len(trades)
}

// stopLossHit reports whether the provided price breaches the stop loss
// floor. The floor itself triggers.
func (b *Bot) stopLossHit(price float64) bool {
	if b.cfg.StopLossPercent == 0 {
		return false
	}

	floor := b.entryPrice * (1 - b.cfg.StopLossPercent/100)
	return price <= floor
}

// takeProfitHit reports whether the provided price reaches the take profit
// ceiling. The ceiling itself triggers.
func (b *Bot) takeProfitHit(price float64) bool {
	if b.cfg.TakeProfitPercent == 0 {
		return false
	}

	ceiling := b.entryPrice * (1 + b.cfg.TakeProfitPercent/100)
	return price >= ceiling
}

// EvaluateOnce runs one evaluation cycle: fetch the market price, enforce the
// protective exits, fetch candles, evaluate the strategy and execute the
// resulting signal. Protective exits run before the strategy so risk limits
// cannot be overridden by a signal.
func (b *Bot) EvaluateOnce(ctx context.Context) (*Evaluation, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	price, err := b.cfg.Exchange.CurrentPrice(ctx, b.cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching current price: %w", err)
	}

	eval := &Evaluation{
		Action:     Hold,
		Price:      price,
		InPosition: b.inPosition,
		EntryPrice: b.entryPrice,
	}

	if b.inPosition {
		switch {
		case b.stopLossHit(price):
			err = b.exit(ctx, price, StopLoss)
			if err != nil {
				return nil, err
			}

			eval.Action = StopLoss
			eval.InPosition = false
			eval.EntryPrice = 0
			eval.TradeCount = b.tradeCount()

			return eval, nil
		case b.takeProfitHit(price):
			err = b.exit(ctx, price, TakeProfit)
			if err != nil {
				return nil, err
			}

			eval.Action = TakeProfit
			eval.InPosition = false
			eval.EntryPrice = 0
			eval.TradeCount = b.tradeCount()

			return eval, nil
		}
	}

	window, err := b.fetchWindow(ctx)
	if err != nil {
		return nil, err
	}

	signal := b.cfg.Strategy.Evaluate(window)
	b.cfg.Logger.Debug().Msgf("%s signalled %s @ %f", b.cfg.Strategy.Name(), signal, price)

	switch signal {
	case shared.Buy:
		if b.inPosition {
			break
		}

		err = b.enter(ctx, price)
		if err != nil {
			return nil, err
		}

		// A skipped entry, eg on an insufficient balance, leaves the
		// controller flat.
		if b.inPosition {
			eval.Action = Buy
			eval.InPosition = true
			eval.EntryPrice = b.entryPrice
		}
	case shared.Sell:
		if !b.inPosition {
			break
		}

		err = b.exit(ctx, price, Sell)
		if err != nil {
			return nil, err
		}

		eval.Action = Sell
		eval.InPosition = false
		eval.EntryPrice = 0
	}

	eval.TradeCount = b.tradeCount()

	return eval, nil
}

// fetchWindow fetches the candle window the strategy needs. Multi-timeframe
// strategies get their aligned pair, everything else the single configured
// timeframe.
func (b *Bot) fetchWindow(ctx context.Context) (strategy.Window, error) {
	mtf, ok := b.cfg.Strategy.(strategy.MultiTimeframer)
	if !ok {
		candles, err := b.cfg.Exchange.HistoricalCandles(ctx, b.cfg.Symbol, b.cfg.Timeframe, b.cfg.CandleLimit)
		if err != nil {
			return strategy.Window{}, fmt.Errorf("fetching candles: %w", err)
		}

		return strategy.Window{Series: candles}, nil
	}

	htf, ltf := mtf.Timeframes()

	htfCandles, err := b.cfg.Exchange.HistoricalCandles(ctx, b.cfg.Symbol, htf, b.cfg.CandleLimit)
	if err != nil {
		return strategy.Window{}, fmt.Errorf("fetching %s candles: %w", htf, err)
	}

	ltfCandles, err := b.cfg.Exchange.HistoricalCandles(ctx, b.cfg.Symbol, ltf, ltfCandleLimit)
	if err != nil {
		return strategy.Window{}, fmt.Errorf("fetching %s candles: %w", ltf, err)
	}

	return strategy.Window{HTF: htfCandles, LTF: ltfCandles}, nil
}

// enter opens a position: balance check, market buy, ledger record, then the
// in-memory transition. A failed order leaves the controller flat. Must be
// called with the bot lock held.
func (b *Bot) enter(ctx context.Context, price float64) error {
	balances, err := b.cfg.Exchange.Balances(ctx)
	if err != nil {
		return fmt.Errorf("fetching balances: %w", err)
	}

	quote := b.cfg.QuoteAsset
	required := price * b.cfg.Quantity
	if balances[quote] < required {
		b.cfg.Logger.Warn().Msgf("insufficient %s balance: have %f, need %f",
			quote, balances[quote], required)
		return nil
	}

	order, err := b.cfg.Exchange.PlaceMarketOrder(ctx, b.cfg.Symbol, shared.SideBuy, b.cfg.Quantity)
	if err != nil {
		return fmt.Errorf("placing buy order: %w", err)
	}

	entryPrice := order.Price
	if entryPrice == 0 {
		entryPrice = price
	}

	var takeProfit, stopLoss float64
	if b.cfg.TakeProfitPercent > 0 {
		takeProfit = entryPrice * (1 + b.cfg.TakeProfitPercent/100)
	}
	if b.cfg.StopLossPercent > 0 {
		stopLoss = entryPrice * (1 - b.cfg.StopLossPercent/100)
	}

	trade, err := b.cfg.Ledger.OpenTrade(ledger.OpenParams{
		Symbol:     b.cfg.Symbol,
		Side:       shared.SideBuy,
		Quantity:   order.Quantity,
		EntryPrice: entryPrice,
		OrderID:    order.ID,
		Strategy:   b.cfg.Strategy.Name(),
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
	})
	if err != nil {
		return fmt.Errorf("recording trade: %w", err)
	}

	b.inPosition = true
	b.entryPrice = entryPrice
	b.tradeID = trade.ID
	b.cfg.Strategy.SetPosition(entryPrice)

	return nil
}

// exit closes the held position: market sell, ledger close, then the
// in-memory transition. A failed order leaves the position held so the next
// cycle retries the exit. Must be called with the bot lock held.
func (b *Bot) exit(ctx context.Context, price float64, reason Action) error {
	order, err := b.cfg.Exchange.PlaceMarketOrder(ctx, b.cfg.Symbol, shared.SideSell, b.cfg.Quantity)
	if err != nil {
		return fmt.Errorf("placing sell order: %w", err)
	}

	exitPrice := order.Price
	if exitPrice == 0 {
		exitPrice = price
	}

	_, err = b.cfg.Ledger.CloseTrade(b.tradeID, exitPrice, order.ID)
	if err != nil && !errors.Is(err, ledger.ErrTradeNotFound) {
		return fmt.Errorf("recording trade close: %w", err)
	}

	b.cfg.Logger.Info().Msgf("exited position on %s @ %f", reason, exitPrice)

	b.inPosition = false
	b.entryPrice = 0
	b.tradeID = ""
	b.cfg.Strategy.ClearPosition()

	return nil
}

// ForceClose exits the held position at the current market price regardless
// of signals. It is a no-op when flat.
func (b *Bot) ForceClose(ctx context.Context) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if !b.inPosition {
		return nil
	}

	price, err := b.cfg.Exchange.CurrentPrice(ctx, b.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("fetching current price: %w", err)
	}

	return b.exit(ctx, price, Sell)
}

// Stop flattens the held position on shutdown. A failed flatten is logged
// rather than returned; the ledger still holds the open record for the next
// start.
func (b *Bot) Stop(ctx context.Context) {
	err := b.ForceClose(ctx)
	if err != nil {
		b.cfg.Logger.Error().Err(err).Msg("closing position on shutdown")
	}
}
