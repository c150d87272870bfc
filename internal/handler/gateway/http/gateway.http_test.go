package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/config"
	"github.com/krobus00/futures-gateway/internal/history"
	"github.com/krobus00/futures-gateway/internal/service/order"
)

func newTestHandler(t *testing.T, venue http.HandlerFunc) (*Handler, *history.Store) {
	t.Helper()

	server := httptest.NewServer(venue)
	t.Cleanup(server.Close)

	config.Env = testEnvConfig()
	t.Cleanup(func() { config.Env = nil })

	client := binance.NewClient(config.BinanceConfig{
		APIKey:    "venue-key",
		APISecret: "venue-secret",
		BaseURL:   server.URL,
	})

	store := history.NewStore(10)
	handler := NewGatewayHTTPHandler(order.NewService(client, nil), client, store, nil, 0)

	return handler, store
}

func testEnvConfig() *config.EnvConfig {
	return &config.EnvConfig{
		Env: "development",
		APIKeys: []config.APIKeyConfig{
			{Name: "dashboard", Key: "gw-test-key", Active: true},
			{Name: "revoked", Key: "gw-revoked-key", Active: false},
		},
	}
}

func placeOrderRequest(t *testing.T, body map[string]any, apiKey string) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/gateway/v1/orders", bytes.NewReader(payload))
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body: %v\n%s", err, rec.Body.String())
	}

	return out
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	handler, store := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orderId":4021981,"symbol":"BTCUSDT","side":"BUY","type":"MARKET","status":"NEW","origQty":"0.01"}`))
	})

	rec := httptest.NewRecorder()
	handler.Orders(rec, placeOrderRequest(t, map[string]any{
		"symbol":   "btcusdt",
		"side":     "buy",
		"type":     "market",
		"quantity": "0.01",
	}, "gw-test-key"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["order_id"] != float64(4021981) {
		t.Errorf("order_id = %v, want 4021981", body["order_id"])
	}
	if body["status"] != "NEW" {
		t.Errorf("status = %v, want NEW", body["status"])
	}

	report, _ := body["report"].(string)
	if !bytes.Contains([]byte(report), []byte("Order ID      : 4021981")) {
		t.Errorf("report missing order id line:\n%s", report)
	}

	entries := store.List()
	if len(entries) != 1 || entries[0].OrderID != 4021981 || entries[0].Symbol != "BTCUSDT" {
		t.Errorf("history = %+v, want one BTCUSDT entry", entries)
	}
}

func TestPlaceOrderValidationFailureSkipsVenue(t *testing.T) {
	venueCalled := false
	handler, store := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		venueCalled = true
	})

	rec := httptest.NewRecorder()
	handler.Orders(rec, placeOrderRequest(t, map[string]any{
		"symbol":   "BTCUSDT",
		"side":     "HOLD",
		"type":     "MARKET",
		"quantity": "0.01",
	}, "gw-test-key"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["field"] != "side" {
		t.Errorf("field = %v, want side", body["field"])
	}

	if venueCalled {
		t.Error("venue must not be called for invalid input")
	}
	if store.Len() != 0 {
		t.Errorf("history len = %d, want 0", store.Len())
	}
}

func TestPlaceOrderRequiresAPIKey(t *testing.T) {
	handler, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler.Orders(rec, placeOrderRequest(t, map[string]any{
		"symbol":   "BTCUSDT",
		"side":     "BUY",
		"type":     "MARKET",
		"quantity": "0.01",
	}, ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPlaceOrderRejectsInactiveAPIKey(t *testing.T) {
	handler, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler.Orders(rec, placeOrderRequest(t, map[string]any{
		"symbol":   "BTCUSDT",
		"side":     "BUY",
		"type":     "MARKET",
		"quantity": "0.01",
	}, "gw-revoked-key"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestPlaceOrderVenueRejectionMapsTo502(t *testing.T) {
	handler, store := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2010,"msg":"insufficient balance"}`))
	})

	rec := httptest.NewRecorder()
	handler.Orders(rec, placeOrderRequest(t, map[string]any{
		"symbol":   "BTCUSDT",
		"side":     "BUY",
		"type":     "MARKET",
		"quantity": "100",
	}, "gw-test-key"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502\n%s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["code"] != float64(-2010) {
		t.Errorf("code = %v, want -2010", body["code"])
	}
	if body["error"] != "insufficient balance" {
		t.Errorf("error = %v, want insufficient balance", body["error"])
	}

	entries := store.List()
	if len(entries) != 1 || entries[0].Error == "" {
		t.Errorf("history = %+v, want one failed entry", entries)
	}
}

func TestOrdersMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/gateway/v1/orders", nil)
	handler.Orders(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
