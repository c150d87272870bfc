package entity

import (
	"github.com/shopspring/decimal"
)

type OrderType string
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"

	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"

	TimeInForceGTC = "GTC"
)

// OrderRequest is a validated, immutable order. Price is nil exactly when
// Type is MARKET; validator.ValidateAll is the only intended constructor.
type OrderRequest struct {
	Symbol   string           `json:"symbol"`
	Side     OrderSide        `json:"side"`
	Type     OrderType        `json:"type"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// OrderResponse is the venue's order acknowledgement. Fields absent from the
// response body decode to their zero value.
type OrderResponse struct {
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Price         string `json:"price"`
	AvgPrice      string `json:"avgPrice"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	CumQuote      string `json:"cumQuote"`
	TimeInForce   string `json:"timeInForce"`
	ReduceOnly    bool   `json:"reduceOnly"`
	UpdateTime    int64  `json:"updateTime"`
}

type OrderRequestEvent struct {
	RetryCount int          `json:"retry"`
	RequestID  string       `json:"request_id"`
	Data       OrderRequest `json:"data"`
}
