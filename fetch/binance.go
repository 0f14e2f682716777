// Package fetch implements the exchange clients supplying market data and
// order execution.
package fetch

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/draeven/tradebot/shared"
)

const (
	// BaseURL is the binance spot testnet api url. Live trading swaps in the
	// production url via configuration.
	BaseURL = "https://testnet.binance.vision"

	// recvWindow is the validity window for signed requests, in milliseconds.
	recvWindow = 5000
)

// BinanceConfig represents the configuration for the binance client.
type BinanceConfig struct {
	// APIKey is the binance API key.
	APIKey string
	// APISecret is the binance API secret used to sign requests.
	APISecret string
	// BaseURL is the api url.
	BaseURL string
}

// BinanceClient represents the binance spot REST api client.
type BinanceClient struct {
	cfg   *BinanceConfig
	httpc http.Client
}

// Ensure the BinanceClient implements the ExchangeClient interface.
var _ shared.ExchangeClient = (*BinanceClient)(nil)

// NewBinanceClient instantiates a new binance client.
func NewBinanceClient(cfg *BinanceConfig) (*BinanceClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &BinanceClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 5},
	}, nil
}

// sign generates the hex encoded HMAC-SHA256 signature of the provided
// payload using the configured api secret.
func (c *BinanceClient) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// do executes the provided request and returns the response body, surfacing
// the exchange error message on a non-success status.
func (c *BinanceClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "msg").String()
		if msg == "" {
			msg = string(body)
		}

		return nil, fmt.Errorf("exchange responded %d: %s", resp.StatusCode, msg)
	}

	return body, nil
}

// get executes an unsigned GET request against the provided api path.
func (c *BinanceClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.do(req)
}

// signedRequest executes a signed request against the provided api path. The
// signature covers the encoded parameters including the request timestamp.
func (c *BinanceClient) signedRequest(ctx context.Context, method string, path string, params url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, errors.New("api credentials required for signed requests")
	}

	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.Itoa(recvWindow))

	payload := params.Encode()
	payload += "&signature=" + c.sign(payload)

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path+"?"+payload, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)

	return c.do(req)
}

// CurrentPrice fetches the last trade price for the provided symbol.
func (c *BinanceClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.get(ctx, "/api/v3/ticker/price", params)
	if err != nil {
		return 0, fmt.Errorf("fetching price for %s: %w", symbol, err)
	}

	price := gjson.GetBytes(body, "price").Float()
	if price <= 0 {
		return 0, fmt.Errorf("invalid price for %s: %s", symbol, string(body))
	}

	return price, nil
}

// ParseCandlesticks parses candlesticks from the provided kline data. Each
// kline is a positional array: open time, open, high, low, close, volume.
func (c *BinanceClient) ParseCandlesticks(data []gjson.Result, symbol string, timeframe shared.Timeframe) []shared.Candlestick {
	candles := make([]shared.Candlestick, 0, len(data))

	for idx := range data {
		kline := data[idx].Array()
		if len(kline) < 6 {
			continue
		}

		candles = append(candles, shared.Candlestick{
			Timestamp: time.UnixMilli(kline[0].Int()),
			Open:      kline[1].Float(),
			High:      kline[2].Float(),
			Low:       kline[3].Float(),
			Close:     kline[4].Float(),
			Volume:    kline[5].Float(),
			Symbol:    symbol,
			Timeframe: timeframe,
		})
	}

	return candles
}

// HistoricalCandles fetches historical candles for the provided symbol,
// ordered oldest first, at most limit entries.
func (c *BinanceClient) HistoricalCandles(ctx context.Context, symbol string, timeframe shared.Timeframe, limit int) ([]shared.Candlestick, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", timeframe.String())
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v3/klines", params)
	if err != nil {
		return nil, fmt.Errorf("fetching %s candles for %s: %w", timeframe, symbol, err)
	}

	data := gjson.ParseBytes(body).Array()

	return c.ParseCandlesticks(data, symbol, timeframe), nil
}

// PlaceMarketOrder places a market order for the provided symbol. The
// returned order carries the average fill price when the exchange reports
// fill details.
func (c *BinanceClient) PlaceMarketOrder(ctx context.Context, symbol string, side shared.Side, quantity float64) (*shared.Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))

	body, err := c.signedRequest(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return nil, fmt.Errorf("placing %s order for %s: %w", strings.ToLower(string(side)), symbol, err)
	}

	order := &shared.Order{
		ID:       gjson.GetBytes(body, "orderId").String(),
		Symbol:   symbol,
		Side:     side,
		Quantity: gjson.GetBytes(body, "executedQty").Float(),
	}

	if order.Quantity == 0 {
		order.Quantity = quantity
	}

	// Average fill price across partial fills.
	executed := gjson.GetBytes(body, "executedQty").Float()
	quote := gjson.GetBytes(body, "cummulativeQuoteQty").Float()
	if executed > 0 && quote > 0 {
		order.Price = quote / executed
	}

	return order, nil
}

// Balances fetches the free account balances keyed by asset.
func (c *BinanceClient) Balances(ctx context.Context) (map[string]float64, error) {
	body, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("fetching balances: %w", err)
	}

	balances := make(map[string]float64)
	for _, entry := range gjson.GetBytes(body, "balances").Array() {
		free := entry.Get("free").Float()
		if free > 0 {
			balances[entry.Get("asset").String()] = free
		}
	}

	return balances, nil
}
