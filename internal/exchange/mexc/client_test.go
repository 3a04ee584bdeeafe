package mexc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"trading-client/internal/core"
	"trading-client/internal/exchange"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := New(Options{
		Credentials: exchange.Credentials{APIKey: "key", APISecret: "secret", BaseURL: baseURL},
	})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return client
}

func TestAuthHeaderOnSignedRequests(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-MEXC-APIKEY")
		w.Write([]byte(`{"balances":[]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	if _, err := client.GetBalances(context.Background()); err != nil {
		t.Fatalf("GetBalances() = %v", err)
	}
	if gotHeader != "key" {
		t.Fatalf("X-MEXC-APIKEY = %q, want key", gotHeader)
	}
}

func TestParseOrderKeepsStringID(t *testing.T) {
	order := parseOrder(orderResponse{
		Symbol:      "BTCUSDT",
		OrderID:     "C02__443776347957968896",
		Price:       "50000",
		OrigQty:     "0.1",
		ExecutedQty: "0",
		Status:      "NEW",
		Side:        "BUY",
		Type:        "LIMIT",
		Time:        1700000000000,
	}, "BTC-USDT")
	if order.OrderID != "C02__443776347957968896" {
		t.Fatalf("OrderID = %q, want wire string untouched", order.OrderID)
	}
	if order.Symbol != "BTC-USDT" || order.Side != core.Buy || order.Status != core.OrderNew {
		t.Fatalf("order = %+v, want canonical fields", order)
	}
}

func TestModifyOrderCancelsThenCreates(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.Write([]byte(`{"orderId":"old-1","status":"CANCELED"}`))
			return
		}
		w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"orderId": "new-1",
			"price": "51000",
			"origQty": "0.1",
			"executedQty": "0",
			"status": "NEW",
			"side": "BUY",
			"type": "LIMIT",
			"transactTime": 1700000000000
		}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	order, err := client.ModifyOrder(context.Background(), "BTC-USDT", "old-1", core.OrderParams{
		Symbol:   "BTC-USDT",
		Side:     core.Buy,
		Type:     core.Limit,
		Quantity: decimal.RequireFromString("0.1"),
		Price:    decimal.RequireFromString("51000"),
	})
	if err != nil {
		t.Fatalf("ModifyOrder() = %v", err)
	}
	want := []string{"DELETE /api/v3/order", "POST /api/v3/order"}
	if len(methods) != 2 || methods[0] != want[0] || methods[1] != want[1] {
		t.Fatalf("requests = %v, want %v", methods, want)
	}
	if order.OrderID != "new-1" {
		t.Fatalf("OrderID = %q, want new-1", order.OrderID)
	}
}

func TestOrderParamsOmitTimeInForce(t *testing.T) {
	params, err := orderParams(core.OrderParams{
		Symbol:   "BTC-USDT",
		Side:     core.Buy,
		Type:     core.Limit,
		Quantity: decimal.RequireFromString("0.1"),
		Price:    decimal.RequireFromString("50000"),
	})
	if err != nil {
		t.Fatalf("orderParams() = %v", err)
	}
	if params.Has("timeInForce") {
		t.Fatalf("params carry timeInForce: %v", params)
	}
	if params.Get("price") != "50000" {
		t.Fatalf("price = %q, want 50000", params.Get("price"))
	}
}

func TestClassifyErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		code string
		kind core.Kind
	}{
		{"api key invalid", apiCodeAPIKeyInvalid, core.KindAuthentication},
		{"signature invalid", apiCodeSignatureInvalid, core.KindAuthentication},
		{"insufficient", apiCodeInsufficient, core.KindInsufficientFunds},
		{"oversold", apiCodeOversold, core.KindInsufficientFunds},
		{"invalid symbol", apiCodeInvalidSymbol, core.KindInvalidOrder},
		{"order not found", apiCodeOrderNotFound, core.KindInvalidOrder},
	}
	for _, tc := range cases {
		got := classifyError(core.NewExchangeError("rejected", tc.code, 400))
		if !core.IsKind(got, tc.kind) {
			t.Fatalf("classifyError(%s) = %v, want kind %v", tc.name, got, tc.kind)
		}
	}
}

func TestClassifyErrorNotFoundCarriesCode(t *testing.T) {
	got := classifyError(core.NewExchangeError("Unknown order id.", apiCodeOrderNotFound, 400))
	e, ok := core.AsError(got)
	if !ok || e.Code != core.CodeNotFound {
		t.Fatalf("classifyError() = %v, want NOT_FOUND code", got)
	}
}

func TestGetDepositAddressTakesFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"address":"0xabc"},{"address":"0xdef"}]`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	addr, err := client.GetDepositAddress(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("GetDepositAddress() = %v", err)
	}
	if addr != "0xabc" {
		t.Fatalf("address = %q, want 0xabc", addr)
	}
}

func TestGetDepositAddressEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.GetDepositAddress(context.Background(), "ETH")
	e, ok := core.AsError(err)
	if !ok || e.Code != core.CodeNotFound {
		t.Fatalf("GetDepositAddress() = %v, want NOT_FOUND", err)
	}
}
