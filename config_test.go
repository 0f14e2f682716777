package main

import (
	"flag"
	"os"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid config, read only",
			cfg: Config{
				Symbol:      "BTCUSDT",
				Quantity:    0.001,
				Strategy:    "combined",
				StoragePath: "trades.json",
				ReadOnly:    true,
			},
			wantErr: nil,
		},
		{
			name: "valid config, live with credentials",
			cfg: Config{
				Symbol:      "BTCUSDT",
				Quantity:    0.001,
				Strategy:    "rsi",
				StoragePath: "trades.json",
				APIKey:      "key",
				APISecret:   "secret",
			},
			wantErr: nil,
		},
		{
			name: "live without credentials",
			cfg: Config{
				Symbol:      "BTCUSDT",
				Quantity:    0.001,
				Strategy:    "combined",
				StoragePath: "trades.json",
			},
			wantErr: []string{
				"api key cannot be an empty string",
				"api secret cannot be an empty string",
			},
		},
		{
			name: "missing symbol and quantity",
			cfg: Config{
				Strategy:    "combined",
				StoragePath: "trades.json",
				ReadOnly:    true,
			},
			wantErr: []string{
				"symbol cannot be an empty string",
				"quantity must be positive",
			},
		},
		{
			name: "unknown strategy",
			cfg: Config{
				Symbol:      "BTCUSDT",
				Quantity:    0.001,
				Strategy:    "martingale",
				StoragePath: "trades.json",
				ReadOnly:    true,
			},
			wantErr: []string{"unknown strategy kind: martingale"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error(s) %v, got none", tt.wantErr)
					return
				}
				for _, want := range tt.wantErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name: "all from env, read only",
			env: map[string]string{
				"symbol":   "BTCUSDT",
				"quantity": "0.001",
				"strategy": "rsi",
				"readonly": "true",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Symbol:      "BTCUSDT",
				Quantity:    0.001,
				Strategy:    "rsi",
				StoragePath: "trades.json",
				ReadOnly:    true,
			},
		},
		{
			name:      "all from flags, read only",
			env:       map[string]string{},
			args:      []string{"cmd", "-symbol=ETHUSDT", "-quantity=0.5", "-strategy=pulse", "-readonly=true", "-stoplosspercent=1.5"},
			expectErr: false,
			expectCfg: Config{
				Symbol:          "ETHUSDT",
				Quantity:        0.5,
				Strategy:        "pulse",
				StoragePath:     "trades.json",
				StopLossPercent: 1.5,
				ReadOnly:        true,
			},
		},
		{
			name:        "missing symbol and credentials",
			env:         map[string]string{},
			args:        []string{"cmd", "-quantity=0.001"},
			expectErr:   true,
			expectInErr: []string{"symbol cannot be an empty string", "api key cannot be an empty string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Set environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if cfg.Symbol != tt.expectCfg.Symbol {
					t.Errorf("Symbol: got %v, want %v", cfg.Symbol, tt.expectCfg.Symbol)
				}
				if cfg.Quantity != tt.expectCfg.Quantity {
					t.Errorf("Quantity: got %v, want %v", cfg.Quantity, tt.expectCfg.Quantity)
				}
				if cfg.Strategy != tt.expectCfg.Strategy {
					t.Errorf("Strategy: got %v, want %v", cfg.Strategy, tt.expectCfg.Strategy)
				}
				if cfg.StoragePath != tt.expectCfg.StoragePath {
					t.Errorf("StoragePath: got %v, want %v", cfg.StoragePath, tt.expectCfg.StoragePath)
				}
				if cfg.StopLossPercent != tt.expectCfg.StopLossPercent {
					t.Errorf("StopLossPercent: got %v, want %v", cfg.StopLossPercent, tt.expectCfg.StopLossPercent)
				}
				if cfg.ReadOnly != tt.expectCfg.ReadOnly {
					t.Errorf("ReadOnly: got %v, want %v", cfg.ReadOnly, tt.expectCfg.ReadOnly)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
