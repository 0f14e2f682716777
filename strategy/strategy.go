// Package strategy implements the signal generators that turn candle windows
// into trading decisions.
package strategy

import (
	"github.com/draeven/tradebot/shared"
)

// Window represents the candle data supplied to a strategy for one evaluation.
// Single timeframe strategies consume Series; multi-timeframe strategies
// consume the HTF/LTF pair.
type Window struct {
	// Series is the single timeframe candle window, oldest first.
	Series []shared.Candlestick
	// HTF is the higher timeframe candle window, oldest first.
	HTF []shared.Candlestick
	// LTF is the lower timeframe candle window, oldest first.
	LTF []shared.Candlestick
}

// Strategy defines the requirements for generating trading signals from
// candle data. Strategies are position aware: the controller updates the
// position state on every fill and strategies gate their entry and exit
// signals on it.
type Strategy interface {
	// Name returns the strategy name.
	Name() string
	// Evaluate generates a trading signal from the provided candle window.
	// It returns Hold whenever the window is shorter than the longest
	// indicator lookback the strategy needs.
	Evaluate(window Window) shared.Signal
	// SetPosition marks the strategy as holding a long position entered at
	// the provided price.
	SetPosition(entryPrice float64)
	// ClearPosition marks the strategy as flat.
	ClearPosition()
	// InLong reports whether the strategy currently holds a long position.
	InLong() bool
}

// MultiTimeframer is implemented by strategies that evaluate two aligned
// candle series instead of one.
type MultiTimeframer interface {
	// Timeframes returns the higher and lower timeframes the strategy needs.
	Timeframes() (htf shared.Timeframe, ltf shared.Timeframe)
}

// position tracks the mutable position state shared by all strategies.
type position struct {
	inLong     bool
	entryPrice float64
}

// SetPosition marks the strategy as holding a long position entered at the
// provided price.
func (p *position) SetPosition(entryPrice float64) {
	p.inLong = true
	p.entryPrice = entryPrice
}

// ClearPosition marks the strategy as flat.
func (p *position) ClearPosition() {
	p.inLong = false
	p.entryPrice = 0
}

// InLong reports whether the strategy currently holds a long position.
func (p *position) InLong() bool {
	return p.inLong
}

// EntryPrice returns the entry price of the held position, zero when flat.
func (p *position) EntryPrice() float64 {
	return p.entryPrice
}

// crossedAbove reports whether the fast series strictly crossed above the
// slow series between the previous and current bar.
func crossedAbove(prevFast, prevSlow, curFast, curSlow float64) bool {
	return prevFast <= prevSlow && curFast > curSlow
}

// crossedBelow reports whether the fast series strictly crossed below the
// slow series between the previous and current bar.
func crossedBelow(prevFast, prevSlow, curFast, curSlow float64) bool {
	return prevFast >= prevSlow && curFast < curSlow
}
