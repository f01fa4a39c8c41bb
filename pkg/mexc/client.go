// Package mexc is a minimal MEXC Global spot client: signed REST calls for
// account balance and market orders, plus the public kline WebSocket stream.
// Only MARKET orders are supported; MEXC has no testnet.
package mexc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"tradingbot/internal/model"
)

const defaultBaseURL = "https://api.mexc.com"

// ExchangeError is a non-2xx REST response from the exchange.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("mexc: http %d: %s", e.Status, e.Body)
}

// Client talks to MEXC spot REST and WebSocket endpoints for one symbol.
// It implements model.OrderGateway, model.BalanceProvider and
// model.MarketDataFeed.
type Client struct {
	apiKey    string
	apiSecret string
	symbol    string
	baseURL   string
	wsURL     string
	httpc     *http.Client
}

// NewClient creates a client. Both credentials are required; a missing one
// is a startup misconfiguration the caller must treat as terminal.
func NewClient(apiKey, apiSecret, symbol string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("mexc: api key and secret are required")
	}
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		symbol:    symbol,
		baseURL:   defaultBaseURL,
		wsURL:     defaultWSURL,
		httpc:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// signedRequest performs one authenticated REST call. The signature is an
// HMAC-SHA256 of the key-sorted query string, appended as a final parameter.
func (c *Client) signedRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	query := params.Encode() // Encode sorts by key
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	query += "&signature=" + hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("mexc: build request: %w", err)
	}
	req.Header.Set("X-MEXC-APIKEY", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mexc: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mexc: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetBalance returns the free balance of the given asset, 0 if the asset is
// absent from the account.
func (c *Client) GetBalance(ctx context.Context, asset string) (float64, error) {
	body, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/account", nil)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	free := 0.0
	gjson.GetBytes(body, "balances").ForEach(func(_, b gjson.Result) bool {
		if b.Get("asset").String() == asset {
			free = b.Get("free").Float()
			return false
		}
		return true
	})
	return free, nil
}

// CreateOrder submits a MARKET order for the configured symbol. The quantity
// is truncated to the exchange's 6-decimal precision on the wire.
func (c *Client) CreateOrder(ctx context.Context, side model.Signal, qty float64) error {
	params := url.Values{}
	params.Set("symbol", c.symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", decimal.NewFromFloat(qty).Truncate(6).String())

	if _, err := c.signedRequest(ctx, http.MethodPost, "/api/v3/order", params); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	log.Printf("[mexc] ORDER %s %.6f sent", side.String(), qty)
	return nil
}
