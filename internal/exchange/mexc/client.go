package mexc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-client/internal/core"
	"trading-client/internal/exchange"
	"trading-client/internal/transport"
)

const DefaultBaseURL = "https://api.mexc.com"

const defaultRecvWindowMs = 5000

type authType int

const (
	authNone authType = iota
	authSigned
)

// Client is the MEXC spot adapter. The wire format follows the Binance
// /api/v3 conventions with MEXC's own auth header and error codes.
type Client struct {
	apiKey       string
	apiSecret    string
	baseURL      string
	recvWindowMs int64
	http         *transport.Client
}

type Options struct {
	Credentials  exchange.Credentials
	RecvWindowMs int64
	HTTPTimeout  time.Duration
	Logger       *zap.Logger
}

func New(opts Options) (*Client, error) {
	if err := opts.Credentials.Validate(); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(opts.Credentials.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	recvWindow := opts.RecvWindowMs
	if recvWindow <= 0 {
		recvWindow = defaultRecvWindowMs
	}
	return &Client{
		apiKey:       opts.Credentials.APIKey,
		apiSecret:    opts.Credentials.APISecret,
		baseURL:      baseURL,
		recvWindowMs: recvWindow,
		http: transport.New(transport.Options{
			Exchange: "mexc",
			Timeout:  opts.HTTPTimeout,
			Logger:   opts.Logger,
		}),
	}, nil
}

func (c *Client) Name() string { return "mexc" }

func (c *Client) GetMarkets(ctx context.Context) ([]core.MarketInfo, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", nil, authNone)
	if err != nil {
		return nil, err
	}
	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, invalidResponse(err)
	}
	markets := make([]core.MarketInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		markets = append(markets, parseMarket(s))
	}
	return markets, nil
}

func (c *Client) GetTicker(ctx context.Context, symbol string) (core.Ticker, error) {
	native, err := nativeSymbol(symbol)
	if err != nil {
		return core.Ticker{}, err
	}
	params := url.Values{}
	params.Set("symbol", native)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/ticker/24hr", params, authNone)
	if err != nil {
		return core.Ticker{}, err
	}
	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.Ticker{}, invalidResponse(err)
	}
	ticker := core.Ticker{
		Symbol:    symbol,
		LastPrice: parseDecimal(resp.LastPrice),
		BidPrice:  parseDecimal(resp.BidPrice),
		AskPrice:  parseDecimal(resp.AskPrice),
		Volume24h: parseDecimal(resp.Volume),
	}
	if resp.CloseTime > 0 {
		ticker.Timestamp = time.UnixMilli(resp.CloseTime)
	}
	return ticker, nil
}

func (c *Client) GetBalances(ctx context.Context) ([]core.Balance, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/account", nil, authSigned)
	if err != nil {
		return nil, err
	}
	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, invalidResponse(err)
	}
	balances := make([]core.Balance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		free := parseDecimal(b.Free)
		locked := parseDecimal(b.Locked)
		balances = append(balances, core.Balance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
			Total:  free.Add(locked),
		})
	}
	return balances, nil
}

func (c *Client) CreateOrder(ctx context.Context, p core.OrderParams) (core.Order, error) {
	params, err := orderParams(p)
	if err != nil {
		return core.Order{}, err
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/api/v3/order", params, authSigned)
	if err != nil {
		return core.Order{}, err
	}
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.Order{}, invalidResponse(err)
	}
	return parseOrder(resp, p.Symbol), nil
}

// ModifyOrder has no native endpoint on MEXC; the adapter cancels the
// original and submits the merged parameters as a new order.
func (c *Client) ModifyOrder(ctx context.Context, symbol, orderID string, p core.OrderParams) (core.Order, error) {
	if _, err := c.CancelOrder(ctx, symbol, orderID); err != nil {
		return core.Order{}, err
	}
	return c.CreateOrder(ctx, p)
}

func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) (bool, error) {
	native, err := nativeSymbol(symbol)
	if err != nil {
		return false, err
	}
	params := url.Values{}
	params.Set("symbol", native)
	params.Set("orderId", orderID)
	if _, err := c.doRequest(ctx, http.MethodDelete, "/api/v3/order", params, authSigned); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) GetOrder(ctx context.Context, symbol, orderID string) (core.Order, error) {
	native, err := nativeSymbol(symbol)
	if err != nil {
		return core.Order{}, err
	}
	params := url.Values{}
	params.Set("symbol", native)
	params.Set("orderId", orderID)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/order", params, authSigned)
	if err != nil {
		return core.Order{}, err
	}
	var resp orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.Order{}, invalidResponse(err)
	}
	return parseOrder(resp, symbol), nil
}

func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	params := url.Values{}
	if symbol != "" {
		native, err := nativeSymbol(symbol)
		if err != nil {
			return nil, err
		}
		params.Set("symbol", native)
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/openOrders", params, authSigned)
	if err != nil {
		return nil, err
	}
	return c.parseOrderList(ctx, body, symbol)
}

func (c *Client) GetOrderHistory(ctx context.Context, symbol string, limit int) ([]core.Order, error) {
	if limit <= 0 {
		limit = exchange.DefaultHistoryLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if symbol != "" {
		native, err := nativeSymbol(symbol)
		if err != nil {
			return nil, err
		}
		params.Set("symbol", native)
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/allOrders", params, authSigned)
	if err != nil {
		return nil, err
	}
	return c.parseOrderList(ctx, body, symbol)
}

func (c *Client) Withdraw(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("coin", asset)
	params.Set("address", address)
	params.Set("amount", amount.String())
	body, err := c.doRequest(ctx, http.MethodPost, "/api/v3/capital/withdraw/apply", params, authSigned)
	if err != nil {
		return "", err
	}
	var resp withdrawResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", invalidResponse(err)
	}
	return resp.ID, nil
}

func (c *Client) GetDepositAddress(ctx context.Context, asset string) (string, error) {
	params := url.Values{}
	params.Set("coin", asset)
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/capital/deposit/address", params, authSigned)
	if err != nil {
		return "", err
	}
	var resp []depositAddressResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", invalidResponse(err)
	}
	if len(resp) == 0 {
		return "", core.NewExchangeError("no deposit address for "+asset, core.CodeNotFound, 0)
	}
	return resp[0].Address, nil
}

func (c *Client) parseOrderList(ctx context.Context, body json.RawMessage, symbol string) ([]core.Order, error) {
	var resp []orderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, invalidResponse(err)
	}
	var symbols map[string]string
	if symbol == "" && len(resp) > 0 {
		var err error
		symbols, err = c.symbolMap(ctx)
		if err != nil {
			return nil, err
		}
	}
	orders := make([]core.Order, 0, len(resp))
	for _, ord := range resp {
		canonical := symbol
		if canonical == "" {
			canonical = symbols[ord.Symbol]
		}
		orders = append(orders, parseOrder(ord, canonical))
	}
	return orders, nil
}

func (c *Client) symbolMap(ctx context.Context) (map[string]string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/v3/exchangeInfo", nil, authNone)
	if err != nil {
		return nil, err
	}
	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, invalidResponse(err)
	}
	symbols := make(map[string]string, len(resp.Symbols))
	for _, s := range resp.Symbols {
		symbols[s.Symbol] = s.BaseAsset + "-" + s.QuoteAsset
	}
	return symbols, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, auth authType) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	headers := http.Header{}
	if auth == authSigned {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", strconv.FormatInt(c.recvWindowMs, 10))
		params.Set("signature", c.SignRequest(path, params))
		headers.Set("X-MEXC-APIKEY", c.apiKey)
	}
	body, err := c.http.Do(ctx, method, c.baseURL+path, headers, params)
	if err != nil {
		return nil, classifyError(err)
	}
	return body, nil
}

// SignRequest computes the HMAC-SHA256 hex signature over the canonical
// query string; params must already carry timestamp and recvWindow.
func (c *Client) SignRequest(_ string, params url.Values) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

func orderParams(p core.OrderParams) (url.Values, error) {
	native, err := nativeSymbol(p.Symbol)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("symbol", native)
	params.Set("side", strings.ToUpper(string(p.Side)))
	params.Set("type", strings.ToUpper(string(p.Type)))
	params.Set("quantity", p.Quantity.String())
	if core.OrderType(strings.ToLower(string(p.Type))) == core.Limit {
		params.Set("price", p.Price.String())
	}
	return params, nil
}

func nativeSymbol(symbol string) (string, error) {
	base, quote, ok := core.SplitSymbol(symbol)
	if !ok {
		return "", core.NewInvalidOrderError("Invalid symbol format: " + symbol)
	}
	return strings.ToUpper(base + quote), nil
}

func invalidResponse(err error) *core.Error {
	return core.NewExchangeError("invalid response body: "+err.Error(), core.CodeInvalidResponse, 0)
}
