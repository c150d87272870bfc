package order

import (
	"context"
	"errors"
	"testing"

	"github.com/krobus00/futures-gateway/internal/binance"
	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/shopspring/decimal"
)

type fakeVenueClient struct {
	got  binance.PlaceOrderParams
	resp *entity.OrderResponse
	err  error
}

func (c *fakeVenueClient) PlaceOrder(ctx context.Context, order binance.PlaceOrderParams) (*entity.OrderResponse, error) {
	c.got = order
	return c.resp, c.err
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error = %v", s, err)
	}

	return d
}

func TestPlaceOrderMarket(t *testing.T) {
	client := &fakeVenueClient{resp: &entity.OrderResponse{OrderID: 1001, Status: "NEW"}}
	svc := NewService(client, nil)

	resp, err := svc.PlaceOrder(context.Background(), entity.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     entity.OrderSideBuy,
		Type:     entity.OrderTypeMarket,
		Quantity: mustDecimal(t, "0.01"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if resp.OrderID != 1001 {
		t.Errorf("OrderID = %d, want 1001", resp.OrderID)
	}

	if client.got.Symbol != "BTCUSDT" || client.got.Side != entity.OrderSideBuy {
		t.Errorf("wire params = %+v", client.got)
	}
	if client.got.Quantity != "0.01" {
		t.Errorf("Quantity = %q, want 0.01", client.got.Quantity)
	}
	if client.got.Price != "" {
		t.Errorf("Price = %q, market orders carry no price", client.got.Price)
	}
	if client.got.TimeInForce != "" {
		t.Errorf("TimeInForce = %q, market orders carry no timeInForce", client.got.TimeInForce)
	}
}

func TestPlaceOrderLimitAddsPriceAndGTC(t *testing.T) {
	client := &fakeVenueClient{resp: &entity.OrderResponse{OrderID: 2002, Status: "NEW"}}
	svc := NewService(client, nil)

	price := mustDecimal(t, "3000.50")
	_, err := svc.PlaceOrder(context.Background(), entity.OrderRequest{
		Symbol:   "ETHUSDT",
		Side:     entity.OrderSideSell,
		Type:     entity.OrderTypeLimit,
		Quantity: mustDecimal(t, "0.1"),
		Price:    &price,
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if client.got.Price != "3000.50" {
		t.Errorf("Price = %q, want 3000.50", client.got.Price)
	}
	if client.got.TimeInForce != entity.TimeInForceGTC {
		t.Errorf("TimeInForce = %q, want GTC", client.got.TimeInForce)
	}
}

func TestPlaceOrderPreservesExactQuantity(t *testing.T) {
	client := &fakeVenueClient{resp: &entity.OrderResponse{}}
	svc := NewService(client, nil)

	_, err := svc.PlaceOrder(context.Background(), entity.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     entity.OrderSideBuy,
		Type:     entity.OrderTypeMarket,
		Quantity: mustDecimal(t, "0.001"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if client.got.Quantity != "0.001" {
		t.Errorf("Quantity = %q, want the exact decimal 0.001", client.got.Quantity)
	}
}

func TestPlaceOrderPropagatesVenueError(t *testing.T) {
	venueErr := &binance.APIError{StatusCode: 400, Code: -2010, Message: "insufficient balance"}
	client := &fakeVenueClient{err: venueErr}
	svc := NewService(client, nil)

	_, err := svc.PlaceOrder(context.Background(), entity.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     entity.OrderSideBuy,
		Type:     entity.OrderTypeMarket,
		Quantity: mustDecimal(t, "100"),
	})

	var apiErr *binance.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *binance.APIError", err)
	}
	if apiErr.Code != -2010 {
		t.Errorf("Code = %d, want -2010", apiErr.Code)
	}
}

func TestPlaceOrderAsyncWithoutQueue(t *testing.T) {
	svc := NewService(&fakeVenueClient{}, nil)

	_, err := svc.PlaceOrderAsync(context.Background(), entity.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     entity.OrderSideBuy,
		Type:     entity.OrderTypeMarket,
		Quantity: mustDecimal(t, "0.01"),
	})

	if !errors.Is(err, ErrAsyncDisabled) {
		t.Errorf("error = %v, want ErrAsyncDisabled", err)
	}
}
