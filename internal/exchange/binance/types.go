package binance

import (
	"strconv"
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
	QuotePrecision int32  `json:"quoteAssetPrecision"`
	Filters        []struct {
		FilterType string `json:"filterType"`
		MinQty     string `json:"minQty"`
		MaxQty     string `json:"maxQty"`
	} `json:"filters"`
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

type orderResponse struct {
	Symbol             string `json:"symbol"`
	OrderID            int64  `json:"orderId"`
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

type cancelReplaceResponse struct {
	NewOrderResponse orderResponse `json:"newOrderResponse"`
}

type cancelResponse struct {
	Status string `json:"status"`
}

type withdrawResponse struct {
	ID string `json:"id"`
}

type depositAddressResponse struct {
	Address string `json:"address"`
}

func parseMarket(src symbolInfoResponse) core.MarketInfo {
	m := core.MarketInfo{
		Symbol:         src.BaseAsset + "-" + src.QuoteAsset,
		BasePrecision:  src.BasePrecision,
		QuotePrecision: src.QuotePrecision,
	}
	for _, f := range src.Filters {
		if f.FilterType != "LOT_SIZE" {
			continue
		}
		if v, err := decimal.NewFromString(f.MinQty); err == nil {
			m.MinOrderSize = v
		}
		if v, err := decimal.NewFromString(f.MaxQty); err == nil {
			m.MaxOrderSize = v
		}
	}
	return m
}

// parseOrder maps a wire order onto the canonical model: numeric strings to
// decimal, side/type/status lower-case, no price on market orders. symbol
// is the canonical BASE-QUOTE form the caller asked about.
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
		OrderID:           formatOrderID(src.OrderID),
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

func formatOrderID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func parseStatus(status string) core.OrderStatus {
	switch status {
	case "NEW", "PENDING_NEW":
		return core.OrderNew
	case "PARTIALLY_FILLED":
		return core.OrderPartiallyFilled
	case "FILLED":
		return core.OrderFilled
	case "CANCELED", "PENDING_CANCEL", "EXPIRED", "EXPIRED_IN_MATCH":
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
