package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/draeven/tradebot/shared"
)

// ErrTradeNotFound is returned when a trade id cannot be resolved to an open
// trade, including closes on an already closed id.
var ErrTradeNotFound = errors.New("trade not found")

// tradeIDLayout is the timestamp component of generated trade ids.
const tradeIDLayout = "20060102150405"

// StoreConfig represents the trade store configuration.
type StoreConfig struct {
	// Path is the filepath of the backing store.
	Path string
	// Now returns the current time, defaults to time.Now. Exposed for tests.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Store is the durable trade store. The full record set is the unit of
// durability: every mutation rewrites the backing file through an atomic
// replace, so the store never holds a partially written record. A single
// writer lock serializes the read-modify-persist path; reads re-synchronize
// from the backing file so concurrent writers in other processes are
// tolerated.
type Store struct {
	cfg    *StoreConfig
	mtx    sync.Mutex
	trades []*Trade
}

// Validate asserts the config has sane inputs.
func (cfg *StoreConfig) Validate() error {
	var errs error

	if cfg.Path == "" {
		errs = errors.Join(errs, fmt.Errorf("store path cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// NewStore initializes a new trade store from the backing file.
func NewStore(cfg *StoreConfig) (*Store, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	err = os.MkdirAll(filepath.Dir(cfg.Path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	store := &Store{
		cfg: cfg,
	}

	err = store.load()
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}

	return store, nil
}

// load reloads the record set from the backing file. A missing file is an
// empty ledger. Must be called with the store lock held.
func (s *Store) load() error {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.trades = []*Trade{}
			return nil
		}

		return fmt.Errorf("reading store file: %w", err)
	}

	var trades []*Trade
	err = json.Unmarshal(data, &trades)
	if err != nil {
		return fmt.Errorf("unmarshaling trades: %w", err)
	}

	for _, trade := range trades {
		if trade.Status == StatusClosed && trade.Exit == nil {
			s.cfg.Logger.Warn().Msgf("closed trade missing exit details: %s", spew.Sdump(trade))
		}
	}

	s.trades = trades

	return nil
}

// save rewrites the full record set to the backing file via a temporary file
// and an atomic rename. Must be called with the store lock held.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.trades, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trades: %w", err)
	}

	tmpPath := s.cfg.Path + ".tmp"
	err = os.WriteFile(tmpPath, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}

	err = os.Rename(tmpPath, s.cfg.Path)
	if err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}

	return nil
}

// generateTradeID generates a unique trade id. The timestamp component keeps
// ids human scannable, the uuid component keeps them collision resistant
// under concurrent writers. Must be called with the store lock held.
func (s *Store) generateTradeID(now time.Time) string {
	return fmt.Sprintf("TRD-%s-%s", now.Format(tradeIDLayout), uuid.NewString()[:8])
}

// OpenParams represents the parameters for opening a trade.
type OpenParams struct {
	Symbol     string
	Side       shared.Side
	Quantity   float64
	EntryPrice float64
	OrderID    string
	Strategy   string
	TakeProfit float64
	StopLoss   float64
}

// OpenTrade opens a new trade and persists it synchronously.
func (s *Store) OpenTrade(params OpenParams) (*Trade, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	trade := &Trade{
		ID:         s.generateTradeID(now),
		Symbol:     params.Symbol,
		Side:       params.Side,
		Quantity:   params.Quantity,
		EntryPrice: params.EntryPrice,
		EntryTime:  now,
		TakeProfit: params.TakeProfit,
		StopLoss:   params.StopLoss,
		OrderID:    params.OrderID,
		Strategy:   params.Strategy,
		Status:     StatusOpen,
	}

	s.trades = append(s.trades, trade)

	err = s.save()
	if err != nil {
		return nil, err
	}

	s.cfg.Logger.Info().Msgf("opened trade %s: %s %s %.8f @ %f",
		trade.ID, trade.Side, trade.Symbol, trade.Quantity, trade.EntryPrice)

	return trade, nil
}

// CloseTrade closes the open trade with the provided id, fills its exit
// fields, computes the realized profit and loss and persists the updated
// record. Closing an unknown or already closed id returns ErrTradeNotFound
// and leaves the store untouched, so a duplicate close cannot corrupt a
// record.
func (s *Store) CloseTrade(tradeID string, exitPrice float64, orderID string) (*Trade, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.load()
	if err != nil {
		return nil, err
	}

	for _, trade := range s.trades {
		if trade.ID != tradeID || trade.Status != StatusOpen {
			continue
		}

		trade.close(exitPrice, s.cfg.Now(), orderID)

		err = s.save()
		if err != nil {
			return nil, err
		}

		s.cfg.Logger.Info().Msgf("closed trade %s @ %f, p/l %.2f (%.2f%%)",
			trade.ID, exitPrice, trade.Exit.ProfitLoss, trade.Exit.ProfitLossPct)

		return trade, nil
	}

	return nil, ErrTradeNotFound
}

// AllTrades returns all trades, re-synchronized from the backing file.
func (s *Store) AllTrades() ([]*Trade, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.load()
	if err != nil {
		return nil, err
	}

	trades := make([]*Trade, len(s.trades))
	copy(trades, s.trades)

	return trades, nil
}

// OpenTrades returns all open trades, re-synchronized from the backing file.
func (s *Store) OpenTrades() ([]*Trade, error) {
	return s.filterTrades(StatusOpen)
}

// ClosedTrades returns all closed trades, re-synchronized from the backing
// file.
func (s *Store) ClosedTrades() ([]*Trade, error) {
	return s.filterTrades(StatusClosed)
}

// filterTrades returns all trades with the provided status.
func (s *Store) filterTrades(status Status) ([]*Trade, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.load()
	if err != nil {
		return nil, err
	}

	trades := make([]*Trade, 0, len(s.trades))
	for _, trade := range s.trades {
		if trade.Status == status {
			trades = append(trades, trade)
		}
	}

	return trades, nil
}

// RunningTrade returns the open trade for the provided symbol, or the first
// open trade when the symbol is empty. It returns nil when there is no open
// trade, which is how a restarted controller discovers it is flat.
func (s *Store) RunningTrade(symbol string) (*Trade, error) {
	openTrades, err := s.OpenTrades()
	if err != nil {
		return nil, err
	}

	for _, trade := range openTrades {
		if symbol == "" || trade.Symbol == symbol {
			return trade, nil
		}
	}

	return nil, nil
}

// TradeByID returns the trade with the provided id, or nil when absent.
func (s *Store) TradeByID(tradeID string) (*Trade, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.load()
	if err != nil {
		return nil, err
	}

	for _, trade := range s.trades {
		if trade.ID == tradeID {
			return trade, nil
		}
	}

	return nil, nil
}
