// Package validator guards every field that can reach a signed venue call.
// Each validator is a pure function returning the canonical value or a
// field-scoped ValidationError; nothing here touches the network.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/krobus00/futures-gateway/internal/entity"
	"github.com/shopspring/decimal"
)

// Futures symbols are uppercase alphanumeric (e.g. BTCUSDT, ETHUSDT).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// ValidationError is a client-side rejection of one input field. It is never
// worth retrying: the same input will fail the same way.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateSymbol trims, uppercases, and checks the symbol pattern. The
// uppercased value is the canonical form.
func ValidateSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(normalized) {
		return "", &ValidationError{
			Field:  "symbol",
			Reason: fmt.Sprintf("%q must be uppercase alphanumeric (e.g. BTCUSDT)", normalized),
		}
	}

	return normalized, nil
}

func ValidateSide(side string) (entity.OrderSide, error) {
	normalized := entity.OrderSide(strings.ToUpper(strings.TrimSpace(side)))
	switch normalized {
	case entity.OrderSideBuy, entity.OrderSideSell:
		return normalized, nil
	default:
		return "", &ValidationError{
			Field:  "side",
			Reason: fmt.Sprintf("%q must be one of: BUY, SELL", normalized),
		}
	}
}

func ValidateOrderType(orderType string) (entity.OrderType, error) {
	normalized := entity.OrderType(strings.ToUpper(strings.TrimSpace(orderType)))
	switch normalized {
	case entity.OrderTypeMarket, entity.OrderTypeLimit:
		return normalized, nil
	default:
		return "", &ValidationError{
			Field:  "type",
			Reason: fmt.Sprintf("%q must be one of: MARKET, LIMIT", normalized),
		}
	}
}

// ValidateQuantity parses an exact decimal, never a binary float: a float64
// round trip could silently alter the trade size on the wire.
func ValidateQuantity(quantity string) (decimal.Decimal, error) {
	qty, err := decimal.NewFromString(strings.TrimSpace(quantity))
	if err != nil {
		return decimal.Decimal{}, &ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("%q must be a positive number", quantity),
		}
	}

	if !qty.IsPositive() {
		return decimal.Decimal{}, &ValidationError{
			Field:  "quantity",
			Reason: fmt.Sprintf("must be positive, got %s", qty.String()),
		}
	}

	return qty, nil
}

// ValidatePrice is order-type aware: MARKET orders never carry a price (any
// supplied value is dropped, even a malformed one); LIMIT orders require an
// exact positive decimal.
func ValidatePrice(price *string, orderType entity.OrderType) (*decimal.Decimal, error) {
	if orderType == entity.OrderTypeMarket {
		return nil, nil
	}

	if price == nil || strings.TrimSpace(*price) == "" {
		return nil, &ValidationError{
			Field:  "price",
			Reason: "required for LIMIT orders",
		}
	}

	p, err := decimal.NewFromString(strings.TrimSpace(*price))
	if err != nil {
		return nil, &ValidationError{
			Field:  "price",
			Reason: fmt.Sprintf("%q must be a positive number", *price),
		}
	}

	if !p.IsPositive() {
		return nil, &ValidationError{
			Field:  "price",
			Reason: fmt.Sprintf("must be positive, got %s", p.String()),
		}
	}

	return &p, nil
}

// ValidateAll runs every validator in the fixed order symbol, side, type,
// quantity, price and stops at the first failure. Errors are not aggregated.
func ValidateAll(symbol, side, orderType, quantity string, price *string) (entity.OrderRequest, error) {
	vSymbol, err := ValidateSymbol(symbol)
	if err != nil {
		return entity.OrderRequest{}, err
	}

	vSide, err := ValidateSide(side)
	if err != nil {
		return entity.OrderRequest{}, err
	}

	vType, err := ValidateOrderType(orderType)
	if err != nil {
		return entity.OrderRequest{}, err
	}

	vQty, err := ValidateQuantity(quantity)
	if err != nil {
		return entity.OrderRequest{}, err
	}

	vPrice, err := ValidatePrice(price, vType)
	if err != nil {
		return entity.OrderRequest{}, err
	}

	return entity.OrderRequest{
		Symbol:   vSymbol,
		Side:     vSide,
		Type:     vType,
		Quantity: vQty,
		Price:    vPrice,
	}, nil
}
