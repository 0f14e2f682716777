package shared

// Signal represents a trading signal emitted by a strategy.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

// String stringifies the provided signal.
func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return "unknown"
	}
}

// Side represents the side of an order or trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)
