package validator

import (
	"errors"
	"testing"

	"github.com/krobus00/futures-gateway/internal/entity"
)

func strPtr(s string) *string {
	return &s
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if vErr.Field != field {
		t.Errorf("Field = %q, want %q", vErr.Field, field)
	}
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "already canonical", input: "BTCUSDT", want: "BTCUSDT"},
		{name: "lowercase normalized", input: "btcusdt", want: "BTCUSDT"},
		{name: "surrounding whitespace", input: "  ethusdt ", want: "ETHUSDT"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "B", wantErr: true},
		{name: "punctuation", input: "BTC-USDT", wantErr: true},
		{name: "too long", input: "ABCDEFGHIJKLMNOPQRSTU", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSymbol(tt.input)
			if tt.wantErr {
				assertValidationError(t, err, "symbol")
				return
			}
			if err != nil {
				t.Fatalf("ValidateSymbol(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSide(t *testing.T) {
	tests := []struct {
		input   string
		want    entity.OrderSide
		wantErr bool
	}{
		{input: "BUY", want: entity.OrderSideBuy},
		{input: "buy", want: entity.OrderSideBuy},
		{input: " sell ", want: entity.OrderSideSell},
		{input: "HOLD", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateSide(tt.input)
		if tt.wantErr {
			assertValidationError(t, err, "side")
			continue
		}
		if err != nil {
			t.Fatalf("ValidateSide(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ValidateSide(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateOrderType(t *testing.T) {
	tests := []struct {
		input   string
		want    entity.OrderType
		wantErr bool
	}{
		{input: "MARKET", want: entity.OrderTypeMarket},
		{input: "market", want: entity.OrderTypeMarket},
		{input: "limit", want: entity.OrderTypeLimit},
		{input: "STOP", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateOrderType(tt.input)
		if tt.wantErr {
			assertValidationError(t, err, "type")
			continue
		}
		if err != nil {
			t.Fatalf("ValidateOrderType(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ValidateOrderType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "0.01", want: "0.01"},
		{input: "0.001", want: "0.001"},
		{input: "5", want: "5"},
		{input: "0", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateQuantity(tt.input)
		if tt.wantErr {
			assertValidationError(t, err, "quantity")
			continue
		}
		if err != nil {
			t.Fatalf("ValidateQuantity(%q) error = %v", tt.input, err)
		}
		if got.String() != tt.want {
			t.Errorf("ValidateQuantity(%q) = %s, want %s", tt.input, got.String(), tt.want)
		}
	}
}

func TestValidatePriceMarketDropsAnyValue(t *testing.T) {
	for _, price := range []*string{nil, strPtr("100"), strPtr("garbage"), strPtr("-1")} {
		got, err := ValidatePrice(price, entity.OrderTypeMarket)
		if err != nil {
			t.Fatalf("ValidatePrice(%v, MARKET) error = %v", price, err)
		}
		if got != nil {
			t.Errorf("ValidatePrice(%v, MARKET) = %s, want nil", price, got.String())
		}
	}
}

func TestValidatePriceLimit(t *testing.T) {
	tests := []struct {
		name    string
		input   *string
		want    string
		wantErr bool
	}{
		{name: "exact decimal", input: strPtr("100.5"), want: "100.5"},
		{name: "integer", input: strPtr("3000"), want: "3000"},
		{name: "missing", input: nil, wantErr: true},
		{name: "empty", input: strPtr(""), wantErr: true},
		{name: "zero", input: strPtr("0"), wantErr: true},
		{name: "negative", input: strPtr("-100"), wantErr: true},
		{name: "non numeric", input: strPtr("cheap"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePrice(tt.input, entity.OrderTypeLimit)
			if tt.wantErr {
				assertValidationError(t, err, "price")
				return
			}
			if err != nil {
				t.Fatalf("ValidatePrice() error = %v", err)
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("ValidatePrice() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateAllNormalizesLowercaseInput(t *testing.T) {
	req, err := ValidateAll("btcusdt", "buy", "market", "0.01", nil)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}

	if req.Symbol != "BTCUSDT" {
		t.Errorf("Symbol = %q, want BTCUSDT", req.Symbol)
	}
	if req.Side != entity.OrderSideBuy {
		t.Errorf("Side = %q, want BUY", req.Side)
	}
	if req.Type != entity.OrderTypeMarket {
		t.Errorf("Type = %q, want MARKET", req.Type)
	}
	if req.Quantity.String() != "0.01" {
		t.Errorf("Quantity = %s, want 0.01", req.Quantity.String())
	}
	if req.Price != nil {
		t.Errorf("Price = %s, want nil", req.Price.String())
	}
}

func TestValidateAllLimitOrder(t *testing.T) {
	req, err := ValidateAll("ETHUSDT", "SELL", "LIMIT", "0.1", strPtr("3000"))
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}

	if req.Price == nil || req.Price.String() != "3000" {
		t.Errorf("Price = %v, want 3000", req.Price)
	}
	if req.Type != entity.OrderTypeLimit {
		t.Errorf("Type = %q, want LIMIT", req.Type)
	}
}

func TestValidateAllFailFastOrder(t *testing.T) {
	// Every field is invalid; the first validator in the pipeline wins.
	_, err := ValidateAll("", "HOLD", "STOP", "-1", nil)
	assertValidationError(t, err, "symbol")

	_, err = ValidateAll("BTCUSDT", "HOLD", "STOP", "-1", nil)
	assertValidationError(t, err, "side")

	_, err = ValidateAll("BTCUSDT", "BUY", "STOP", "-1", nil)
	assertValidationError(t, err, "type")

	_, err = ValidateAll("BTCUSDT", "BUY", "LIMIT", "-1", nil)
	assertValidationError(t, err, "quantity")

	_, err = ValidateAll("BTCUSDT", "BUY", "LIMIT", "0.1", nil)
	assertValidationError(t, err, "price")
}
