package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL points at the USDT-M futures testnet.
	DefaultBaseURL = "https://demo-fapi.binance.com"

	defaultTimeout = 10 * time.Second

	apiKeyHeader = "X-MBX-APIKEY"
)

// Client is the low-level venue client. One instance is meant to live for
// the whole process and be shared by concurrent callers; the underlying
// http.Client pools connections and is safe for concurrent use.
type Client struct {
	apiKey     string
	signer     *Signer
	baseURL    string
	recvWindow int64
	httpClient *http.Client
}

func NewClient(cfg config.BinanceConfig) *Client {
	return newClient(cfg, nil)
}

// NewClientWithClock pins the signing clock. Intended for tests.
func NewClientWithClock(cfg config.BinanceConfig, clock Clock) *Client {
	return newClient(cfg, clock)
}

func newClient(cfg config.BinanceConfig, clock Clock) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		signer:     NewSigner(strings.TrimSpace(cfg.APISecret), clock),
		baseURL:    strings.TrimRight(baseURL, "/"),
		recvWindow: cfg.RecvWindow,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do dispatches one request. Every parameter travels in the query string
// regardless of verb; the venue documents order placement as form-style
// query parameters even on POST.
func (c *Client) do(ctx context.Context, method, path string, params *Params, signed bool) ([]byte, error) {
	if params == nil {
		params = NewParams()
	}

	if signed {
		if c.recvWindow > 0 {
			params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
		}
		c.signer.Sign(params)
	}

	endpoint := c.baseURL + path
	if params.Len() > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)

	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"query":  params.redactedEncode(),
	}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
		"bytes":  len(body),
	}).Debug("api response")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apiErrorFromBody(resp.StatusCode, body)
	}

	return body, nil
}

func apiErrorFromBody(statusCode int, body []byte) *APIError {
	var payload struct {
		Code *int64 `json:"code"`
		Msg  string `json:"msg"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return &APIError{
			StatusCode: statusCode,
			Code:       -1,
			Message:    string(body),
		}
	}

	code := int64(-1)
	if payload.Code != nil {
		code = *payload.Code
	}

	message := payload.Msg
	if message == "" {
		message = string(body)
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// PlaceOrderParams is the closed parameter set for order placement. Quantity
// and Price are exact decimal strings rendered upstream; TimeInForce is only
// sent for LIMIT orders.
type PlaceOrderParams struct {
	Symbol           string
	Side             entity.OrderSide
	Type             entity.OrderType
	Quantity         string
	Price            string
	TimeInForce      string
	NewClientOrderID string
}

func (p PlaceOrderParams) toParams() *Params {
	params := NewParams().
		Set("symbol", p.Symbol).
		Set("side", string(p.Side)).
		Set("type", string(p.Type)).
		Set("quantity", p.Quantity)

	if p.Price != "" {
		params.Set("price", p.Price)
	}
	if p.TimeInForce != "" {
		params.Set("timeInForce", p.TimeInForce)
	}
	if p.NewClientOrderID != "" {
		params.Set("newClientOrderId", p.NewClientOrderID)
	}

	return params
}

// Ping checks connectivity (GET /fapi/v1/ping).
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/fapi/v1/ping", nil, false)
	return err
}

// ServerTime fetches the venue clock (GET /fapi/v1/time).
func (c *Client) ServerTime(ctx context.Context) (*entity.ServerTimeResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/time", nil, false)
	if err != nil {
		return nil, err
	}

	var resp entity.ServerTimeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode server time response: %w", err)
	}

	return &resp, nil
}

// PlaceOrder submits a new order (POST /fapi/v1/order, signed).
func (c *Client) PlaceOrder(ctx context.Context, order PlaceOrderParams) (*entity.OrderResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/fapi/v1/order", order.toParams(), true)
	if err != nil {
		return nil, err
	}

	var resp entity.OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	return &resp, nil
}

// CancelOrder cancels an open order (DELETE /fapi/v1/order, signed).
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (*entity.OrderResponse, error) {
	params := NewParams().
		Set("symbol", symbol).
		Set("orderId", strconv.FormatInt(orderID, 10))

	body, err := c.do(ctx, http.MethodDelete, "/fapi/v1/order", params, true)
	if err != nil {
		return nil, err
	}

	var resp entity.OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode cancel response: %w", err)
	}

	return &resp, nil
}

// OpenOrders lists open orders (GET /fapi/v1/openOrders, signed). Symbol is
// optional; empty means all symbols.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]entity.OrderResponse, error) {
	params := NewParams()
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/openOrders", params, true)
	if err != nil {
		return nil, err
	}

	var resp []entity.OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode open orders response: %w", err)
	}

	return resp, nil
}

// Account fetches the account snapshot (GET /fapi/v2/account, signed).
func (c *Client) Account(ctx context.Context) (*entity.AccountSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/fapi/v2/account", nil, true)
	if err != nil {
		return nil, err
	}

	var resp entity.AccountSnapshot
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode account response: %w", err)
	}

	return &resp, nil
}

// PositionRisk fetches position information (GET /fapi/v2/positionRisk, signed).
func (c *Client) PositionRisk(ctx context.Context) ([]entity.PositionRisk, error) {
	body, err := c.do(ctx, http.MethodGet, "/fapi/v2/positionRisk", nil, true)
	if err != nil {
		return nil, err
	}

	var resp []entity.PositionRisk
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode position risk response: %w", err)
	}

	return resp, nil
}

// TickerPrice fetches the latest price (GET /fapi/v1/ticker/price).
func (c *Client) TickerPrice(ctx context.Context, symbol string) (*entity.TickerPrice, error) {
	params := NewParams().Set("symbol", symbol)

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/ticker/price", params, false)
	if err != nil {
		return nil, err
	}

	var resp entity.TickerPrice
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode ticker price response: %w", err)
	}

	return &resp, nil
}

// Ticker24h fetches 24-hour rolling stats (GET /fapi/v1/ticker/24hr).
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*entity.Ticker24h, error) {
	params := NewParams().Set("symbol", symbol)

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/ticker/24hr", params, false)
	if err != nil {
		return nil, err
	}

	var resp entity.Ticker24h
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode 24h ticker response: %w", err)
	}

	return &resp, nil
}

// Klines fetches candlestick data (GET /fapi/v1/klines). The venue returns
// heterogeneous arrays; the raw JSON is handed through untouched.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) (json.RawMessage, error) {
	params := NewParams().
		Set("symbol", symbol).
		Set("interval", interval).
		Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/klines", params, false)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}

// ExchangeInfo fetches trading rules (GET /fapi/v1/exchangeInfo). Symbol is
// optional.
func (c *Client) ExchangeInfo(ctx context.Context, symbol string) (json.RawMessage, error) {
	params := NewParams()
	if symbol != "" {
		params.Set("symbol", symbol)
	}

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/exchangeInfo", params, false)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}
