package mexc

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trading-client/internal/core"
)

type exchangeInfoResponse struct {
	Symbols []symbolInfoResponse `json:"symbols"`
}

type symbolInfoResponse struct {
	Symbol         string `json:"symbol"`
	BaseAsset      string `json:"baseAsset"`
	QuoteAsset     string `json:"quoteAsset"`
	BasePrecision  int32  `json:"baseAssetPrecision"`
	QuotePrecision int32  `json:"quotePrecision"`
	BaseSizePrec   string `json:"baseSizePrecision"`
	MaxQuoteAmount string `json:"maxQuoteAmount"`
}

type tickerResponse struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
	Volume    string `json:"volume"`
	CloseTime int64  `json:"closeTime"`
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// orderResponse mirrors the MEXC /api/v3 order shape. Unlike Binance the
// order id is already a string on the wire.
type orderResponse struct {
	Symbol             string `json:"symbol"`
	OrderID            string `json:"orderId"`
	Price              string `json:"price"`
	OrigQty            string `json:"origQty"`
	ExecutedQty        string `json:"executedQty"`
	CumulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status             string `json:"status"`
	Side               string `json:"side"`
	Type               string `json:"type"`
	TimeInForce        string `json:"timeInForce"`
	Time               int64  `json:"time"`
	TransactTime       int64  `json:"transactTime"`
}

type withdrawResponse struct {
	ID string `json:"id"`
}

type depositAddressResponse struct {
	Address string `json:"address"`
}

func parseMarket(src symbolInfoResponse) core.MarketInfo {
	return core.MarketInfo{
		Symbol:         src.BaseAsset + "-" + src.QuoteAsset,
		BasePrecision:  src.BasePrecision,
		QuotePrecision: src.QuotePrecision,
		MinOrderSize:   parseDecimal(src.BaseSizePrec),
		MaxOrderSize:   parseDecimal(src.MaxQuoteAmount),
	}
}

func parseOrder(src orderResponse, symbol string) core.Order {
	price := parseDecimal(src.Price)
	origQty := parseDecimal(src.OrigQty)
	executedQty := parseDecimal(src.ExecutedQty)
	cumQuote := parseDecimal(src.CumulativeQuoteQty)

	typ := core.OrderType(strings.ToLower(src.Type))
	if typ == core.Market {
		price = decimal.Zero
	}
	remaining := origQty.Sub(executedQty)
	if remaining.Cmp(decimal.Zero) < 0 {
		remaining = decimal.Zero
	}
	avgPrice := decimal.Zero
	if executedQty.Cmp(decimal.Zero) > 0 {
		avgPrice = cumQuote.Div(executedQty)
	}
	ts := src.TransactTime
	if ts == 0 {
		ts = src.Time
	}
	order := core.Order{
		OrderParams: core.OrderParams{
			Symbol:      symbol,
			Side:        core.Side(strings.ToLower(src.Side)),
			Type:        typ,
			Quantity:    origQty,
			Price:       price,
			TimeInForce: core.TimeInForce(strings.ToUpper(src.TimeInForce)),
		},
		OrderID:           src.OrderID,
		Status:            parseStatus(src.Status),
		FilledQuantity:    executedQty,
		RemainingQuantity: remaining,
		AvgPrice:          avgPrice,
	}
	if ts > 0 {
		order.Timestamp = time.UnixMilli(ts)
	}
	return order
}

func parseStatus(status string) core.OrderStatus {
	switch status {
	case "NEW":
		return core.OrderNew
	case "PARTIALLY_FILLED":
		return core.OrderPartiallyFilled
	case "FILLED":
		return core.OrderFilled
	case "CANCELED", "PARTIALLY_CANCELED", "EXPIRED":
		return core.OrderCanceled
	case "REJECTED":
		return core.OrderRejected
	}
	return core.OrderNew
}

func parseDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}
