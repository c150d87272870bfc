package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/krobus00/futures-gateway/internal/history"
	"github.com/krobus00/futures-gateway/internal/service/order"
	"github.com/krobus00/futures-gateway/internal/validator"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	errAPIKeyMissing  = errors.New("api key is required")
	errAPIKeyInvalid  = errors.New("invalid api key")
	errAPIKeyInactive = errors.New("api key is inactive")
	errAPIKeyExpired  = errors.New("api key is expired")
)

const defaultTickerTTL = 2 * time.Second

type PlaceOrderRequest struct {
	ApiKey   string `json:"api_key"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

type PlaceOrderResponse struct {
	OrderID       int64       `json:"order_id"`
	ClientOrderID null.String `json:"client_order_id"`
	Symbol        string      `json:"symbol"`
	Side          string      `json:"side"`
	Type          string      `json:"type"`
	Status        string      `json:"status"`
	Price         null.String `json:"price"`
	AvgPrice      null.String `json:"avg_price"`
	OrigQty       string      `json:"orig_qty"`
	ExecutedQty   string      `json:"executed_qty"`
	TimeInForce   null.String `json:"time_in_force"`
	UpdateTime    int64       `json:"update_time"`
	Report        string      `json:"report"`
}

type PlaceOrderAsyncResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// Handler exposes the dashboard's JSON API over the core pipeline. Every
// route validates the gateway API key; order routes additionally run the
// full input validation before anything reaches a signed call.
type Handler struct {
	orderService *order.Service
	client       *binance.Client
	historyStore *history.Store
	cache        *redis.Client
	tickerTTL    time.Duration
}

func NewGatewayHTTPHandler(orderService *order.Service, client *binance.Client, historyStore *history.Store, cache *redis.Client, tickerTTL time.Duration) *Handler {
	if tickerTTL <= 0 {
		tickerTTL = defaultTickerTTL
	}

	return &Handler{
		orderService: orderService,
		client:       client,
		historyStore: historyStore,
		cache:        cache,
		tickerTTL:    tickerTTL,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/gateway/v1/orders", h.Orders)
	mux.HandleFunc("/gateway/v1/orders/async", h.PlaceOrderAsync)
	mux.HandleFunc("/gateway/v1/open-orders", h.OpenOrders)
	mux.HandleFunc("/gateway/v1/account", h.Account)
	mux.HandleFunc("/gateway/v1/positions", h.Positions)
	mux.HandleFunc("/gateway/v1/ticker/price", h.TickerPrice)
	mux.HandleFunc("/gateway/v1/ticker/24hr", h.Ticker24h)
	mux.HandleFunc("/gateway/v1/klines", h.Klines)
	mux.HandleFunc("/gateway/v1/exchange-info", h.ExchangeInfo)
	mux.HandleFunc("/gateway/v1/ping", h.Ping)
}

// Orders dispatches on verb: POST places, GET lists history, DELETE cancels.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrder(w, r)
	case http.MethodGet:
		h.orderHistory(w, r)
	case http.MethodDelete:
		h.cancelOrder(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if err := validateAPIKey(resolveAPIKey(r, req.ApiKey)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	var price *string
	if strings.TrimSpace(req.Price) != "" {
		price = &req.Price
	}

	orderReq, err := validator.ValidateAll(req.Symbol, req.Side, req.Type, req.Quantity, price)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	resp, err := h.orderService.PlaceOrder(r.Context(), orderReq)
	if err != nil {
		h.appendHistory(orderReq, "", nil, err)
		writeOrderError(w, err)
		return
	}

	h.appendHistory(orderReq, "", resp, nil)
	writeJSON(w, http.StatusOK, mapOrderResponse(resp))
}

func (h *Handler) PlaceOrderAsync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	defer r.Body.Close()

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	if err := validateAPIKey(resolveAPIKey(r, req.ApiKey)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	var price *string
	if strings.TrimSpace(req.Price) != "" {
		price = &req.Price
	}

	orderReq, err := validator.ValidateAll(req.Symbol, req.Side, req.Type, req.Quantity, price)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	requestID, err := h.orderService.PlaceOrderAsync(r.Context(), orderReq)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	h.appendHistory(orderReq, requestID, nil, nil)
	writeJSON(w, http.StatusAccepted, PlaceOrderAsyncResponse{
		RequestID: requestID,
		Status:    "queued",
	})
}

func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	if err := validateAPIKey(resolveAPIKey(r, "")); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": h.historyStore.List()})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := validateAPIKey(resolveAPIKey(r, "")); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	symbol, err := validator.ValidateSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	orderID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("order_id")), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid order_id"})
		return
	}

	resp, err := h.client.CancelOrder(r.Context(), symbol, orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderResponse(resp))
}

func (h *Handler) OpenOrders(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))

	resp, err := h.client.OpenOrders(r.Context(), symbol)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	resp, err := h.client.Account(r.Context())
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Positions(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	resp, err := h.client.PositionRisk(r.Context())
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"positions": resp})
}

func (h *Handler) TickerPrice(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	symbol, err := validator.ValidateSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	if cached, ok := h.cachedTicker(r.Context(), symbol); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	resp, err := h.client.TickerPrice(r.Context(), symbol)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	h.storeTicker(r.Context(), symbol, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Ticker24h(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	symbol, err := validator.ValidateSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	resp, err := h.client.Ticker24h(r.Context(), symbol)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Klines(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	symbol, err := validator.ValidateSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	interval := strings.TrimSpace(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = "1h"
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid limit"})
			return
		}
		if parsed > 500 {
			parsed = 500
		}
		limit = parsed
	}

	resp, err := h.client.Klines(r.Context(), symbol, interval, limit)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"klines": resp})
}

func (h *Handler) ExchangeInfo(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))

	resp, err := h.client.ExchangeInfo(r.Context(), symbol)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}

	if err := h.client.Ping(r.Context()); err != nil {
		writeOrderError(w, err)
		return
	}

	serverTime, err := h.client.ServerTime(r.Context())
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"server_time": serverTime.ServerTime,
	})
}

func (h *Handler) cachedTicker(ctx context.Context, symbol string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}

	payload, err := h.cache.Get(ctx, tickerCacheKey(symbol)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.Warnf("ticker cache read failed: %v", err)
		}
		return nil, false
	}

	return payload, true
}

func (h *Handler) storeTicker(ctx context.Context, symbol string, ticker *entity.TickerPrice) {
	if h.cache == nil {
		return
	}

	payload, err := json.Marshal(ticker)
	if err != nil {
		return
	}

	if err := h.cache.Set(ctx, tickerCacheKey(symbol), payload, h.tickerTTL).Err(); err != nil {
		logrus.Warnf("ticker cache write failed: %v", err)
	}
}

func tickerCacheKey(symbol string) string {
	return "ticker_price:" + symbol
}

func (h *Handler) appendHistory(req entity.OrderRequest, requestID string, resp *entity.OrderResponse, placeErr error) {
	price := "MARKET"
	if req.Price != nil {
		price = req.Price.String()
	}

	entry := history.Entry{
		Time:      time.Now().UTC(),
		RequestID: requestID,
		Symbol:    req.Symbol,
		Side:      string(req.Side),
		Type:      string(req.Type),
		Quantity:  req.Quantity.String(),
		Price:     price,
	}

	switch {
	case placeErr != nil:
		entry.Error = placeErr.Error()
	case resp != nil:
		entry.OrderID = resp.OrderID
		entry.Status = resp.Status
	default:
		entry.Status = "QUEUED"
	}

	h.historyStore.Append(entry)
}

func mapOrderResponse(resp *entity.OrderResponse) *PlaceOrderResponse {
	return &PlaceOrderResponse{
		OrderID:       resp.OrderID,
		ClientOrderID: null.NewString(resp.ClientOrderID, resp.ClientOrderID != ""),
		Symbol:        resp.Symbol,
		Side:          resp.Side,
		Type:          resp.Type,
		Status:        resp.Status,
		Price:         null.NewString(resp.Price, resp.Price != ""),
		AvgPrice:      null.NewString(resp.AvgPrice, resp.AvgPrice != ""),
		OrigQty:       resp.OrigQty,
		ExecutedQty:   resp.ExecutedQty,
		TimeInForce:   null.NewString(resp.TimeInForce, resp.TimeInForce != ""),
		UpdateTime:    resp.UpdateTime,
		Report:        order.FormatOrderResponse(resp),
	}
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return false
	}

	if err := validateAPIKey(resolveAPIKey(r, "")); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return false
	}

	return true
}

// writeOrderError maps the core error taxonomy onto HTTP statuses: caller
// faults are 4xx, venue rejections 502, transport faults 504.
func writeOrderError(w http.ResponseWriter, err error) {
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
		return
	}

	var apiErr *binance.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":       apiErr.Message,
			"code":        apiErr.Code,
			"status_code": apiErr.StatusCode,
		})
		return
	}

	var transportErr *binance.TransportError
	if errors.As(err, &transportErr) {
		writeJSON(w, http.StatusGatewayTimeout, map[string]any{"error": transportErr.Error()})
		return
	}

	if errors.Is(err, order.ErrAsyncDisabled) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveAPIKey(r *http.Request, bodyKey string) string {
	if headerKey := strings.TrimSpace(r.Header.Get("X-API-Key")); headerKey != "" {
		return headerKey
	}

	return strings.TrimSpace(bodyKey)
}

func validateAPIKey(rawAPIKey string) error {
	apiKey := strings.TrimSpace(rawAPIKey)
	if apiKey == "" {
		return errAPIKeyMissing
	}

	if config.Env == nil || len(config.Env.APIKeys) == 0 {
		return errAPIKeyInvalid
	}

	now := time.Now().UTC()
	for _, candidate := range config.Env.APIKeys {
		storedKey := strings.TrimSpace(candidate.Key)
		if storedKey == "" {
			continue
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(storedKey)) != 1 {
			continue
		}

		if !candidate.Active {
			return errAPIKeyInactive
		}

		expiredAt, hasExpiry, err := parseExpiry(candidate.ExpiredAt)
		if err != nil {
			return errAPIKeyInvalid
		}
		if !hasExpiry {
			return nil
		}

		if !now.Before(expiredAt) {
			return errAPIKeyExpired
		}

		return nil
	}

	return errAPIKeyInvalid
}

func parseExpiry(value any) (time.Time, bool, error) {
	if value == nil {
		return time.Time{}, false, nil
	}

	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false, nil
		}
		return v.UTC(), true, nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false, nil
		}

		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC(), true, nil
		}

		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, false, err
		}

		return parsed.UTC().Add(24 * time.Hour), true, nil
	default:
		return time.Time{}, false, errors.New("unsupported expiry type")
	}
}
