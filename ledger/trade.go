// Package ledger is the durable record of every trade and the single source
// of truth for what is open versus closed.
package ledger

import (
	"time"

	"github.com/draeven/tradebot/shared"
)

// Status represents the lifecycle status of a trade.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Exit holds the exit details of a closed trade. It is present exactly when
// the trade is closed, so exit fields cannot exist on an open record.
type Exit struct {
	// Price is the realized exit price.
	Price float64 `json:"price"`
	// Time is the exit time.
	Time time.Time `json:"time"`
	// OrderID is the exchange order id of the closing fill.
	OrderID string `json:"order_id,omitempty"`
	// ProfitLoss is the realized profit or loss in quote currency.
	ProfitLoss float64 `json:"profit_loss"`
	// ProfitLossPct is the realized profit or loss relative to entry.
	ProfitLossPct float64 `json:"profit_loss_pct"`
}

// Trade represents a single trade through its lifecycle: opened by one fill,
// closed by exactly one close, then immutable.
type Trade struct {
	ID         string        `json:"id"`
	Symbol     string        `json:"symbol"`
	Side       shared.Side   `json:"side"`
	Quantity   float64       `json:"quantity"`
	EntryPrice float64       `json:"entry_price"`
	EntryTime  time.Time     `json:"entry_time"`
	TakeProfit float64       `json:"take_profit,omitempty"`
	StopLoss   float64       `json:"stop_loss,omitempty"`
	OrderID    string        `json:"order_id,omitempty"`
	Strategy   string        `json:"strategy,omitempty"`
	Status     Status        `json:"status"`
	Exit       *Exit         `json:"exit,omitempty"`
}

// Closed reports whether the trade has been closed.
func (t *Trade) Closed() bool {
	return t.Status == StatusClosed && t.Exit != nil
}

// ProfitLoss returns the realized profit or loss of the trade, zero while
// the trade is still open.
func (t *Trade) ProfitLoss() float64 {
	if t.Exit == nil {
		return 0
	}

	return t.Exit.ProfitLoss
}

// close fills the exit fields and computes the realized profit and loss. For
// buy side trades profit is (exit - entry) * quantity; sell side trades are
// treated as shorts, profit is (entry - exit) * quantity.
func (t *Trade) close(exitPrice float64, exitTime time.Time, orderID string) {
	exit := &Exit{
		Price:   exitPrice,
		Time:    exitTime,
		OrderID: orderID,
	}

	switch t.Side {
	case shared.SideBuy:
		exit.ProfitLoss = (exitPrice - t.EntryPrice) * t.Quantity
		exit.ProfitLossPct = ((exitPrice - t.EntryPrice) / t.EntryPrice) * 100
	default:
		exit.ProfitLoss = (t.EntryPrice - exitPrice) * t.Quantity
		exit.ProfitLossPct = ((t.EntryPrice - exitPrice) / t.EntryPrice) * 100
	}

	t.Exit = exit
	t.Status = StatusClosed
}
