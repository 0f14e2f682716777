package ledger

import (
	"testing"
	"time"

	"github.com/draeven/tradebot/shared"
)

func TestTradeProfitLossSignConvention(t *testing.T) {
	exitTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		side       shared.Side
		entryPrice float64
		exitPrice  float64
		quantity   float64
		wantPL     float64
		wantPct    float64
	}{
		{
			name:       "buy side profit",
			side:       shared.SideBuy,
			entryPrice: 100,
			exitPrice:  110,
			quantity:   2,
			wantPL:     20,
			wantPct:    10,
		},
		{
			name:       "buy side loss",
			side:       shared.SideBuy,
			entryPrice: 100,
			exitPrice:  95,
			quantity:   2,
			wantPL:     -10,
			wantPct:    -5,
		},
		{
			name:       "sell side treated as short, profit",
			side:       shared.SideSell,
			entryPrice: 100,
			exitPrice:  90,
			quantity:   2,
			wantPL:     20,
			wantPct:    10,
		},
		{
			name:       "sell side treated as short, loss",
			side:       shared.SideSell,
			entryPrice: 100,
			exitPrice:  105,
			quantity:   2,
			wantPL:     -10,
			wantPct:    -5,
		},
	}

	for _, test := range tests {
		trade := &Trade{
			ID:         "TRD-test",
			Symbol:     "BTCUSDT",
			Side:       test.side,
			Quantity:   test.quantity,
			EntryPrice: test.entryPrice,
			Status:     StatusOpen,
		}

		trade.close(test.exitPrice, exitTime, "")

		if !trade.Closed() {
			t.Errorf("%s: expected trade to be closed", test.name)
		}
		if trade.Exit.ProfitLoss != test.wantPL {
			t.Errorf("%s: expected profit/loss %v, got %v", test.name, test.wantPL, trade.Exit.ProfitLoss)
		}
		if trade.Exit.ProfitLossPct != test.wantPct {
			t.Errorf("%s: expected profit/loss pct %v, got %v", test.name, test.wantPct, trade.Exit.ProfitLossPct)
		}
	}
}

func TestTradeProfitLossWhileOpen(t *testing.T) {
	trade := &Trade{
		ID:     "TRD-test",
		Status: StatusOpen,
	}

	if trade.Closed() {
		t.Error("expected open trade to not report closed")
	}
	if trade.ProfitLoss() != 0 {
		t.Errorf("expected zero profit/loss for open trade, got %v", trade.ProfitLoss())
	}
}
