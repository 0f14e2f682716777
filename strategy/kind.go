package strategy

import (
	"fmt"
	"strings"

	"github.com/draeven/tradebot/shared"
)

// Kind represents a strategy variant.
type Kind int

const (
	RSIKind Kind = iota
	EMACrossKind
	CombinedKind
	ScalpKind
	PulseKind
	MTFImpulseKind
)

// String stringifies the provided strategy kind.
func (k Kind) String() string {
	switch k {
	case RSIKind:
		return "rsi"
	case EMACrossKind:
		return "ema"
	case CombinedKind:
		return "combined"
	case ScalpKind:
		return "scalp"
	case PulseKind:
		return "pulse"
	case MTFImpulseKind:
		return "mtf"
	default:
		return "unknown"
	}
}

// ParseKind parses a strategy kind from its name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "rsi":
		return RSIKind, nil
	case "ema", "emacross":
		return EMACrossKind, nil
	case "combined":
		return CombinedKind, nil
	case "scalp", "1min":
		return ScalpKind, nil
	case "pulse", "momentum":
		return PulseKind, nil
	case "mtf", "mtfpulse", "mtf-pulse":
		return MTFImpulseKind, nil
	default:
		return 0, fmt.Errorf("unknown strategy kind: %s", name)
	}
}

// DefaultTimeframe returns the candle timeframe the strategy kind is tuned for.
func (k Kind) DefaultTimeframe() shared.Timeframe {
	switch k {
	case ScalpKind:
		return shared.OneMinute
	case PulseKind, MTFImpulseKind:
		return shared.FiveMinute
	default:
		return shared.OneHour
	}
}

// New initializes a strategy of the provided kind. The switch is exhaustive
// over all kinds, there is no fallback variant.
func New(kind Kind, cfg *Config) (Strategy, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch kind {
	case RSIKind:
		return NewRSI(cfg.RSIPeriod, cfg.RSIOverbought, cfg.RSIOversold), nil
	case EMACrossKind:
		return NewEMACross(cfg.EMAShortPeriod, cfg.EMALongPeriod), nil
	case CombinedKind:
		return NewCombined(cfg), nil
	case ScalpKind:
		return NewScalp(), nil
	case PulseKind:
		return NewPulse(), nil
	case MTFImpulseKind:
		return NewMTFImpulse(), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind: %d", kind)
	}
}

// Config represents the tunable strategy settings.
type Config struct {
	// RSIPeriod is the RSI lookback period.
	RSIPeriod int
	// RSIOverbought is the RSI overbought threshold.
	RSIOverbought float64
	// RSIOversold is the RSI oversold threshold.
	RSIOversold float64
	// EMAShortPeriod is the short EMA period.
	EMAShortPeriod int
	// EMALongPeriod is the long EMA period.
	EMALongPeriod int
	// CombinedScoreThreshold is the minimum weighted vote score required for
	// the combined strategy to act. Lowering it trades precision for
	// frequency.
	CombinedScoreThreshold float64
}

// DefaultConfig returns the default strategy settings.
func DefaultConfig() *Config {
	return &Config{
		RSIPeriod:              14,
		RSIOverbought:          70,
		RSIOversold:            30,
		EMAShortPeriod:         9,
		EMALongPeriod:          21,
		CombinedScoreThreshold: 2.0,
	}
}
