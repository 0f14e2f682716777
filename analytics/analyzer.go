// Package analytics derives windowed profit and loss statistics from the
// trade ledger. Every query recomputes from the ledger's closed trades, so
// there is no hidden state and results are always safe to recompute.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/draeven/tradebot/ledger"
)

// Stats represents profit and loss statistics for a collection of closed
// trades within one time window.
type Stats struct {
	Period    string    `json:"period"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`

	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	TotalProfitLoss    float64 `json:"total_profit_loss"`
	TotalProfitLossPct float64 `json:"total_profit_loss_pct"`
	WinRate            float64 `json:"win_rate"`
	AvgProfit          float64 `json:"avg_profit"`
	AvgLoss            float64 `json:"avg_loss"`

	BestTrade  *ledger.Trade `json:"best_trade,omitempty"`
	WorstTrade *ledger.Trade `json:"worst_trade,omitempty"`
}

// DayStats represents the profit and loss summary of one calendar day.
type DayStats struct {
	Date       string  `json:"date"`
	Day        string  `json:"day"`
	Trades     int     `json:"trades"`
	ProfitLoss float64 `json:"profit_loss"`
}

// Summary aggregates the canned stat windows with current ledger context.
type Summary struct {
	Hourly   Stats           `json:"hourly"`
	Daily    Stats           `json:"daily"`
	Weekly   Stats           `json:"weekly"`
	Monthly  Stats           `json:"monthly"`
	AllTime  Stats           `json:"all_time"`
	Open     []*ledger.Trade `json:"open_trades"`
	Recent   []*ledger.Trade `json:"recent_trades"`
}

// AnalyzerConfig represents the analyzer configuration.
type AnalyzerConfig struct {
	// Ledger is the trade store supplying closed trades.
	Ledger *ledger.Store
	// Now returns the current time, defaults to time.Now. Exposed for tests.
	Now func() time.Time
}

// Analyzer computes profit and loss statistics over the ledger.
type Analyzer struct {
	cfg *AnalyzerConfig
}

// Validate asserts the config has sane inputs.
func (cfg *AnalyzerConfig) Validate() error {
	var errs error

	if cfg.Ledger == nil {
		errs = errors.Join(errs, fmt.Errorf("ledger cannot be nil"))
	}

	return errs
}

// NewAnalyzer initializes a new profit and loss analyzer.
func NewAnalyzer(cfg *AnalyzerConfig) (*Analyzer, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Analyzer{
		cfg: cfg,
	}, nil
}

// filterByWindow returns the closed trades whose exit time falls within the
// half-open window [start, end).
func filterByWindow(trades []*ledger.Trade, start, end time.Time) []*ledger.Trade {
	filtered := make([]*ledger.Trade, 0, len(trades))
	for _, trade := range trades {
		if trade.Exit == nil {
			continue
		}

		exit := trade.Exit.Time
		if !exit.Before(start) && exit.Before(end) {
			filtered = append(filtered, trade)
		}
	}

	return filtered
}

// calculateStats computes statistics for the provided closed trades.
func calculateStats(trades []*ledger.Trade) Stats {
	stats := Stats{
		TotalTrades: len(trades),
	}

	if len(trades) == 0 {
		return stats
	}

	var winTotal, lossTotal float64
	best, worst := trades[0], trades[0]

	for _, trade := range trades {
		pl := trade.ProfitLoss()
		stats.TotalProfitLoss += pl
		if trade.Exit != nil {
			stats.TotalProfitLossPct += trade.Exit.ProfitLossPct
		}

		switch {
		case pl > 0:
			stats.WinningTrades++
			winTotal += pl
		case pl < 0:
			stats.LosingTrades++
			lossTotal += pl
		}

		if pl > best.ProfitLoss() {
			best = trade
		}
		if pl < worst.ProfitLoss() {
			worst = trade
		}
	}

	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	if stats.WinningTrades > 0 {
		stats.AvgProfit = winTotal / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = lossTotal / float64(stats.LosingTrades)
	}

	stats.BestTrade = best
	stats.WorstTrade = worst

	return stats
}

// windowStats computes statistics for closed trades in [start, now).
func (a *Analyzer) windowStats(period string, start time.Time) (Stats, error) {
	closed, err := a.cfg.Ledger.ClosedTrades()
	if err != nil {
		return Stats{}, fmt.Errorf("fetching closed trades: %w", err)
	}

	now := a.cfg.Now()
	stats := calculateStats(filterByWindow(closed, start, now))
	stats.Period = period
	stats.StartTime = start
	stats.EndTime = now

	return stats, nil
}

// HourlyStats computes statistics for the last n hours.
func (a *Analyzer) HourlyStats(hours int) (Stats, error) {
	start := a.cfg.Now().Add(-time.Duration(hours) * time.Hour)
	return a.windowStats(fmt.Sprintf("last_%d_hours", hours), start)
}

// DailyStats computes statistics for the last n days.
func (a *Analyzer) DailyStats(days int) (Stats, error) {
	start := a.cfg.Now().AddDate(0, 0, -days)
	return a.windowStats(fmt.Sprintf("last_%d_days", days), start)
}

// WeeklyStats computes statistics for the last n weeks.
func (a *Analyzer) WeeklyStats(weeks int) (Stats, error) {
	start := a.cfg.Now().AddDate(0, 0, -weeks*7)
	return a.windowStats(fmt.Sprintf("last_%d_weeks", weeks), start)
}

// MonthlyStats computes statistics for the last n months of thirty days.
func (a *Analyzer) MonthlyStats(months int) (Stats, error) {
	start := a.cfg.Now().AddDate(0, 0, -months*30)
	return a.windowStats(fmt.Sprintf("last_%d_months", months), start)
}

// AllTimeStats computes statistics over every closed trade.
func (a *Analyzer) AllTimeStats() (Stats, error) {
	closed, err := a.cfg.Ledger.ClosedTrades()
	if err != nil {
		return Stats{}, fmt.Errorf("fetching closed trades: %w", err)
	}

	stats := calculateStats(closed)
	stats.Period = "all_time"

	return stats, nil
}

// GetSummary aggregates all canned windows with the open and most recently
// closed trades.
func (a *Analyzer) GetSummary() (*Summary, error) {
	hourly, err := a.HourlyStats(1)
	if err != nil {
		return nil, err
	}
	daily, err := a.DailyStats(1)
	if err != nil {
		return nil, err
	}
	weekly, err := a.WeeklyStats(1)
	if err != nil {
		return nil, err
	}
	monthly, err := a.MonthlyStats(1)
	if err != nil {
		return nil, err
	}
	allTime, err := a.AllTimeStats()
	if err != nil {
		return nil, err
	}

	open, err := a.cfg.Ledger.OpenTrades()
	if err != nil {
		return nil, fmt.Errorf("fetching open trades: %w", err)
	}

	closed, err := a.cfg.Ledger.ClosedTrades()
	if err != nil {
		return nil, fmt.Errorf("fetching closed trades: %w", err)
	}

	const recentCount = 10
	recent := closed
	if len(recent) > recentCount {
		recent = recent[len(recent)-recentCount:]
	}

	return &Summary{
		Hourly:  hourly,
		Daily:   daily,
		Weekly:  weekly,
		Monthly: monthly,
		AllTime: allTime,
		Open:    open,
		Recent:  recent,
	}, nil
}

// DailyBreakdown computes a day-by-day summary for the last n calendar days
// in the local reference clock, oldest day first.
func (a *Analyzer) DailyBreakdown(days int) ([]DayStats, error) {
	closed, err := a.cfg.Ledger.ClosedTrades()
	if err != nil {
		return nil, fmt.Errorf("fetching closed trades: %w", err)
	}

	now := a.cfg.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	breakdown := make([]DayStats, 0, days)
	for i := days - 1; i >= 0; i-- {
		dayStart := midnight.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		trades := filterByWindow(closed, dayStart, dayEnd)

		var total float64
		for _, trade := range trades {
			total += trade.ProfitLoss()
		}

		breakdown = append(breakdown, DayStats{
			Date:       dayStart.Format("2006-01-02"),
			Day:        dayStart.Weekday().String(),
			Trades:     len(trades),
			ProfitLoss: total,
		})
	}

	return breakdown, nil
}
