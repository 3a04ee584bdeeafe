package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

type OrderStatus string

type TimeInForce string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

const (
	OrderNew             OrderStatus = "new"
	OrderPartiallyFilled OrderStatus = "partially_filled"
	OrderFilled          OrderStatus = "filled"
	OrderCanceled        OrderStatus = "canceled"
	OrderRejected        OrderStatus = "rejected"
)

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
)

// OrderParams describes an order to be submitted. Symbol uses the canonical
// BASE-QUOTE form; Price is meaningful only for limit orders.
type OrderParams struct {
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"side"`
	Type        OrderType       `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price,omitempty"`
	TimeInForce TimeInForce     `json:"timeInForce,omitempty"`
}

// Order is an exchange-reported order snapshot. It is never mutated locally;
// FilledQuantity + RemainingQuantity reconciles to the original quantity
// modulo exchange rounding.
type Order struct {
	OrderParams
	OrderID           string          `json:"orderId"`
	Status            OrderStatus     `json:"status"`
	FilledQuantity    decimal.Decimal `json:"filledQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	AvgPrice          decimal.Decimal `json:"avgPrice"`
	Timestamp         time.Time       `json:"timestamp"`
}

type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
	Total  decimal.Decimal `json:"total"`
}

type MarketInfo struct {
	Symbol         string          `json:"symbol"`
	BasePrecision  int32           `json:"basePrecision"`
	QuotePrecision int32           `json:"quotePrecision"`
	MinOrderSize   decimal.Decimal `json:"minOrderSize"`
	MaxOrderSize   decimal.Decimal `json:"maxOrderSize"`
}

type Ticker struct {
	Symbol    string          `json:"symbol"`
	LastPrice decimal.Decimal `json:"lastPrice"`
	BidPrice  decimal.Decimal `json:"bidPrice"`
	AskPrice  decimal.Decimal `json:"askPrice"`
	Volume24h decimal.Decimal `json:"volume24h"`
	Timestamp time.Time       `json:"timestamp"`
}

func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderFilled, OrderCanceled, OrderRejected:
		return true
	}
	return false
}

// SplitSymbol splits a canonical BASE-QUOTE symbol into its assets.
func SplitSymbol(symbol string) (base, quote string, ok bool) {
	base, quote, found := strings.Cut(symbol, "-")
	if !found || base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}
