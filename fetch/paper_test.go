package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"

	"github.com/draeven/tradebot/shared"
)

// staticData is a market data stub with a fixed price.
type staticData struct {
	price    float64
	priceErr error
}

func (s *staticData) CurrentPrice(_ context.Context, _ string) (float64, error) {
	if s.priceErr != nil {
		return 0, s.priceErr
	}
	return s.price, nil
}

func (s *staticData) HistoricalCandles(_ context.Context, symbol string, timeframe shared.Timeframe, _ int) ([]shared.Candlestick, error) {
	return []shared.Candlestick{{Close: s.price, Symbol: symbol, Timeframe: timeframe}}, nil
}

func (s *staticData) PlaceMarketOrder(_ context.Context, _ string, _ shared.Side, _ float64) (*shared.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *staticData) Balances(_ context.Context) (map[string]float64, error) {
	return nil, errors.New("not implemented")
}

func newTestPaperClient(t *testing.T, data *staticData, balance float64) *PaperClient {
	t.Helper()

	logger := zerolog.Nop()
	client, err := NewPaperClient(&PaperConfig{
		Data:       data,
		QuoteAsset: "USDT",
		Balance:    balance,
		Logger:     &logger,
	})
	assert.NoError(t, err)

	return client
}

func TestPaperClientRoundTrip(t *testing.T) {
	data := &staticData{price: 100}
	client := newTestPaperClient(t, data, 1000)
	ctx := context.Background()

	// Market data passes through.
	price, err := client.CurrentPrice(ctx, "BTCUSDT")
	assert.NoError(t, err)
	assert.Equal(t, price, float64(100))

	candles, err := client.HistoricalCandles(ctx, "BTCUSDT", shared.OneHour, 10)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 1)

	// A buy converts quote balance into base balance at the market price.
	order, err := client.PlaceMarketOrder(ctx, "BTCUSDT", shared.SideBuy, 2)
	assert.NoError(t, err)
	assert.NotEqual(t, order.ID, "")
	assert.Equal(t, order.Price, float64(100))

	balances, err := client.Balances(ctx)
	assert.NoError(t, err)
	assert.Equal(t, balances["USDT"], float64(800))
	assert.Equal(t, balances["BTC"], float64(2))

	// A sell at a higher price realizes the gain.
	data.price = 110
	_, err = client.PlaceMarketOrder(ctx, "BTCUSDT", shared.SideSell, 2)
	assert.NoError(t, err)

	balances, err = client.Balances(ctx)
	assert.NoError(t, err)
	assert.Equal(t, balances["USDT"], float64(1020))
	assert.Equal(t, balances["BTC"], float64(0))
}

func TestPaperClientRejectsOverdrafts(t *testing.T) {
	data := &staticData{price: 100}
	client := newTestPaperClient(t, data, 50)
	ctx := context.Background()

	// Buying beyond the quote balance fails.
	_, err := client.PlaceMarketOrder(ctx, "BTCUSDT", shared.SideBuy, 1)
	assert.Error(t, err)

	// Selling base assets never bought fails.
	_, err = client.PlaceMarketOrder(ctx, "BTCUSDT", shared.SideSell, 1)
	assert.Error(t, err)

	// Balances are untouched.
	balances, err := client.Balances(ctx)
	assert.NoError(t, err)
	assert.Equal(t, balances["USDT"], float64(50))
}

func TestPaperClientOrderFailsWithoutPrice(t *testing.T) {
	data := &staticData{priceErr: errors.New("exchange down")}
	client := newTestPaperClient(t, data, 1000)

	_, err := client.PlaceMarketOrder(context.Background(), "BTCUSDT", shared.SideBuy, 1)
	assert.Error(t, err)
}
