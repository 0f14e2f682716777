package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/draeven/tradebot/strategy"
)

// Config is the configuration struct for the service.
type Config struct {
	// Symbol is the market being traded.
	Symbol string
	// Quantity is the base asset quantity per trade.
	Quantity float64
	// Strategy is the name of the signal strategy.
	Strategy string
	// Timeframe is the candle interval code, empty for the strategy default.
	Timeframe string
	// StopLossPercent is the maximum tolerated loss relative to entry.
	StopLossPercent float64
	// TakeProfitPercent is the profit target relative to entry.
	TakeProfitPercent float64
	// EvaluationSeconds is the evaluation interval in seconds.
	EvaluationSeconds int
	// StoragePath is the filepath of the trade ledger.
	StoragePath string
	// APIKey is the exchange API key.
	APIKey string
	// APISecret is the exchange API secret.
	APISecret string
	// BaseURL overrides the exchange api url.
	BaseURL string
	// ReadOnly runs the bot against simulated fills, no exchange orders.
	ReadOnly bool

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
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
	if _, err := strategy.ParseKind(cfg.Strategy); err != nil {
		errs = errors.Join(errs, err)
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

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// defaultString applies a fallback when the value is still unset after
// environment and flag resolution.
func defaultString(value *string, fallback string) {
	if *value == "" {
		*value = fallback
	}
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("symbol", &cfg.Symbol, "the traded market symbol")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("quantity", &cfg.Quantity, "the base asset quantity per trade")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("strategy", &cfg.Strategy, "the signal strategy")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("timeframe", &cfg.Timeframe, "the candle interval code")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("stoplosspercent", &cfg.StopLossPercent, "the stop loss percent")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("takeprofitpercent", &cfg.TakeProfitPercent, "the take profit percent")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("evaluationseconds", &cfg.EvaluationSeconds, "the evaluation interval in seconds")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("storagepath", &cfg.StoragePath, "the trade ledger filepath")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("apikey", &cfg.APIKey, "the exchange api key")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("apisecret", &cfg.APISecret, "the exchange api secret")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("baseurl", &cfg.BaseURL, "the exchange api url")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("readonly", &cfg.ReadOnly, "the read-only (simulated fills) flag")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	defaultString(&cfg.Strategy, "combined")
	defaultString(&cfg.StoragePath, "trades.json")

	return cfg.Validate()
}
