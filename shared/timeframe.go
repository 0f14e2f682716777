package shared

import (
	"fmt"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	OneMinute Timeframe = iota
	FiveMinute
	FifteenMinute
	OneHour
	FourHour
	OneDay
)

// String stringifies the provided timeframe using exchange interval codes.
func (t Timeframe) String() string {
	switch t {
	case OneMinute:
		return "1m"
	case FiveMinute:
		return "5m"
	case FifteenMinute:
		return "15m"
	case OneHour:
		return "1h"
	case FourHour:
		return "4h"
	case OneDay:
		return "1d"
	default:
		return "unknown"
	}
}

// ParseTimeframe parses a timeframe from its exchange interval code.
func ParseTimeframe(code string) (Timeframe, error) {
	switch code {
	case "1m":
		return OneMinute, nil
	case "5m":
		return FiveMinute, nil
	case "15m":
		return FifteenMinute, nil
	case "1h":
		return OneHour, nil
	case "4h":
		return FourHour, nil
	case "1d":
		return OneDay, nil
	default:
		return 0, fmt.Errorf("unknown timeframe code: %s", code)
	}
}
