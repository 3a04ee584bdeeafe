package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-client/internal/core"
	"trading-client/internal/metrics"
)

// Client is the shared exchange core. It wraps one Adapter, validates
// orders before submission, derives convenience lookups, implements the
// close-out flow, and funnels every adapter failure through the taxonomy.
// It holds no mutable state and performs no caching or retries.
type Client struct {
	adapter Adapter
	log     *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

func New(adapter Adapter, opts ...Option) *Client {
	c := &Client{adapter: adapter, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.adapter.Name() }

func (c *Client) GetMarkets(ctx context.Context) ([]core.MarketInfo, error) {
	markets, err := c.adapter.GetMarkets(ctx)
	if err != nil {
		return nil, core.Normalize(err, "Failed to get markets")
	}
	return markets, nil
}

func (c *Client) GetTicker(ctx context.Context, symbol string) (core.Ticker, error) {
	ticker, err := c.adapter.GetTicker(ctx, symbol)
	if err != nil {
		return core.Ticker{}, core.Normalize(err, fmt.Sprintf("Failed to get ticker for %s", symbol))
	}
	return ticker, nil
}

// CurrentPrice returns the last traded price for symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker, err := c.adapter.GetTicker(ctx, symbol)
	if err != nil {
		return decimal.Zero, core.Normalize(err, fmt.Sprintf("Failed to get current price for %s", symbol))
	}
	return ticker.LastPrice, nil
}

// Balance returns the balance entry whose asset exactly matches asset.
func (c *Client) Balance(ctx context.Context, asset string) (core.Balance, error) {
	balances, err := c.adapter.GetBalances(ctx)
	if err != nil {
		return core.Balance{}, core.Normalize(err, fmt.Sprintf("Failed to get balance for %s", asset))
	}
	for _, b := range balances {
		if b.Asset == asset {
			return b, nil
		}
	}
	return core.Balance{}, core.NewInvalidOrderError(fmt.Sprintf("Balance not found for asset %s", asset))
}

func (c *Client) GetBalances(ctx context.Context) ([]core.Balance, error) {
	balances, err := c.adapter.GetBalances(ctx)
	if err != nil {
		return nil, core.Normalize(err, "Failed to get balances")
	}
	return balances, nil
}

type ValidateOptions struct {
	// SkipBalanceCheck is set by order modification: the open order already
	// reserved funds, so sufficiency must not be re-checked against them.
	SkipBalanceCheck bool
}

// ValidateOrder runs the structural checks in order, first failure wins,
// then the balance-sufficiency check unless skipped. Sufficiency compares
// the free balance against a single reference-price snapshot; it is not
// re-checked atomically with submission.
func (c *Client) ValidateOrder(ctx context.Context, params core.OrderParams, opts ValidateOptions) error {
	if params.Symbol == "" {
		return core.NewInvalidOrderError("Symbol is required")
	}
	if params.Side == "" {
		return core.NewInvalidOrderError("Side is required")
	}
	if params.Type == "" {
		return core.NewInvalidOrderError("Type is required")
	}
	if params.Quantity.Cmp(decimal.Zero) <= 0 {
		return core.NewInvalidOrderError("Quantity must be greater than 0")
	}
	side := core.Side(strings.ToLower(string(params.Side)))
	if side != core.Buy && side != core.Sell {
		return core.NewInvalidOrderError("Invalid side")
	}
	typ := core.OrderType(strings.ToLower(string(params.Type)))
	if typ != core.Market && typ != core.Limit {
		return core.NewInvalidOrderError("Invalid type")
	}
	if typ == core.Limit && params.Price.Cmp(decimal.Zero) <= 0 {
		return core.NewInvalidOrderError("Price is required for limit orders and must be greater than 0")
	}
	if opts.SkipBalanceCheck {
		return nil
	}
	return c.validateBalance(ctx, params, side, typ)
}

func (c *Client) validateBalance(ctx context.Context, params core.OrderParams, side core.Side, typ core.OrderType) error {
	base, quote, ok := core.SplitSymbol(params.Symbol)
	if !ok {
		return core.NewInvalidOrderError(fmt.Sprintf("Invalid symbol format: %s", params.Symbol))
	}
	asset := base
	if side == core.Buy {
		asset = quote
	}
	balance, err := c.Balance(ctx, asset)
	if err != nil {
		return core.Normalize(err, "Failed to validate balance")
	}

	required := params.Quantity
	if side == core.Buy {
		refPrice := params.Price
		if typ == core.Market || refPrice.Cmp(decimal.Zero) <= 0 {
			refPrice, err = c.CurrentPrice(ctx, params.Symbol)
			if err != nil {
				return core.Normalize(err, "Failed to validate balance")
			}
		}
		required = params.Quantity.Mul(refPrice)
	}
	if balance.Free.Cmp(required) < 0 {
		return core.NewInsufficientFundsError(fmt.Sprintf(
			"Insufficient %s balance. Required: %s, Available: %s",
			asset, required.String(), balance.Free.String()))
	}
	return nil
}

// CreateOrder validates params (including balance sufficiency) and submits
// them through the adapter.
func (c *Client) CreateOrder(ctx context.Context, params core.OrderParams) (core.Order, error) {
	if err := c.ValidateOrder(ctx, params, ValidateOptions{}); err != nil {
		return core.Order{}, err
	}
	order, err := c.adapter.CreateOrder(ctx, params)
	if err != nil {
		return core.Order{}, core.Normalize(err, "Failed to create order")
	}
	metrics.OrdersSubmitted.WithLabelValues(c.adapter.Name(), string(order.Side)).Inc()
	c.log.Info("order created",
		zap.String("exchange", c.adapter.Name()),
		zap.String("symbol", order.Symbol),
		zap.String("orderId", order.OrderID),
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.Type)),
		zap.String("quantity", order.Quantity.String()))
	return order, nil
}

// ModifyOrder fetches the existing order, merges the supplied fields over
// it, re-validates without the balance check, and submits the update.
func (c *Client) ModifyOrder(ctx context.Context, symbol, orderID string, changes core.OrderParams) (core.Order, error) {
	existing, err := c.adapter.GetOrder(ctx, symbol, orderID)
	if err != nil {
		if isOrderNotFound(err) {
			return core.Order{}, core.NewInvalidOrderError("Order not found")
		}
		return core.Order{}, core.Normalize(err, "Failed to modify order")
	}
	if existing.OrderID == "" {
		return core.Order{}, core.NewInvalidOrderError("Order not found")
	}
	merged := mergeParams(existing.OrderParams, changes)
	merged.Symbol = symbol
	if err := c.ValidateOrder(ctx, merged, ValidateOptions{SkipBalanceCheck: true}); err != nil {
		return core.Order{}, err
	}
	order, err := c.adapter.ModifyOrder(ctx, symbol, orderID, merged)
	if err != nil {
		return core.Order{}, core.Normalize(err, "Failed to modify order")
	}
	return order, nil
}

func mergeParams(existing, changes core.OrderParams) core.OrderParams {
	merged := existing
	if changes.Side != "" {
		merged.Side = changes.Side
	}
	if changes.Type != "" {
		merged.Type = changes.Type
	}
	if changes.Quantity.Cmp(decimal.Zero) > 0 {
		merged.Quantity = changes.Quantity
	}
	if changes.Price.Cmp(decimal.Zero) > 0 {
		merged.Price = changes.Price
	}
	if changes.TimeInForce != "" {
		merged.TimeInForce = changes.TimeInForce
	}
	return merged
}

func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) (bool, error) {
	ok, err := c.adapter.CancelOrder(ctx, symbol, orderID)
	if err != nil {
		return false, core.Normalize(err, "Failed to cancel order")
	}
	metrics.OrdersCanceled.WithLabelValues(c.adapter.Name()).Inc()
	c.log.Info("order canceled",
		zap.String("exchange", c.adapter.Name()),
		zap.String("symbol", symbol),
		zap.String("orderId", orderID))
	return ok, nil
}

func (c *Client) GetOrder(ctx context.Context, symbol, orderID string) (core.Order, error) {
	order, err := c.adapter.GetOrder(ctx, symbol, orderID)
	if err != nil {
		return core.Order{}, core.Normalize(err, "Failed to get order")
	}
	return order, nil
}

func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	orders, err := c.adapter.GetOpenOrders(ctx, symbol)
	if err != nil {
		return nil, core.Normalize(err, "Failed to get open orders")
	}
	return orders, nil
}

func (c *Client) GetOrderHistory(ctx context.Context, symbol string, limit int) ([]core.Order, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	orders, err := c.adapter.GetOrderHistory(ctx, symbol, limit)
	if err != nil {
		return nil, core.Normalize(err, "Failed to get order history")
	}
	return orders, nil
}

func (c *Client) Withdraw(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error) {
	id, err := c.adapter.Withdraw(ctx, asset, address, amount)
	if err != nil {
		return "", core.Normalize(err, fmt.Sprintf("Failed to withdraw %s", asset))
	}
	return id, nil
}

func (c *Client) DepositAddress(ctx context.Context, asset string) (string, error) {
	addr, err := c.adapter.GetDepositAddress(ctx, asset)
	if err != nil {
		return "", core.Normalize(err, fmt.Sprintf("Failed to get deposit address for %s", asset))
	}
	return addr, nil
}

// CloseOrderMarket cancels the order and submits a market order on the
// opposite side for the unfilled quantity. Cancel and re-create are two
// independent calls: a crash or create failure after a successful cancel
// leaves the position without cover.
func (c *Client) CloseOrderMarket(ctx context.Context, symbol, orderID string) (core.Order, error) {
	return c.closeOrder(ctx, symbol, orderID, core.Market, decimal.Zero,
		"Failed to close order at market price")
}

// CloseOrderLimit is CloseOrderMarket with a limit re-order at price, GTC.
func (c *Client) CloseOrderLimit(ctx context.Context, symbol, orderID string, price decimal.Decimal) (core.Order, error) {
	return c.closeOrder(ctx, symbol, orderID, core.Limit, price,
		"Failed to close order at limit price")
}

func (c *Client) closeOrder(ctx context.Context, symbol, orderID string, typ core.OrderType, price decimal.Decimal, defaultMsg string) (core.Order, error) {
	order, err := c.adapter.GetOrder(ctx, symbol, orderID)
	if err != nil {
		if isOrderNotFound(err) {
			return core.Order{}, core.NewInvalidOrderError("Order not found")
		}
		return core.Order{}, core.Normalize(err, defaultMsg)
	}
	if order.OrderID == "" {
		return core.Order{}, core.NewInvalidOrderError("Order not found")
	}
	if _, err := c.CancelOrder(ctx, symbol, orderID); err != nil {
		return core.Order{}, core.Normalize(err, defaultMsg)
	}
	params := core.OrderParams{
		Symbol:   symbol,
		Side:     order.Side.Opposite(),
		Type:     typ,
		Quantity: order.RemainingQuantity,
	}
	if typ == core.Limit {
		params.Price = price
		params.TimeInForce = core.GTC
	}
	closed, err := c.CreateOrder(ctx, params)
	if err != nil {
		return core.Order{}, core.Normalize(err, defaultMsg)
	}
	c.log.Info("order closed",
		zap.String("exchange", c.adapter.Name()),
		zap.String("symbol", symbol),
		zap.String("closedOrderId", orderID),
		zap.String("coverOrderId", closed.OrderID),
		zap.String("side", string(closed.Side)))
	return closed, nil
}

// isOrderNotFound distinguishes "no such order" from transport failure.
func isOrderNotFound(err error) bool {
	e, ok := core.AsError(err)
	if !ok {
		return false
	}
	return e.Kind == core.KindInvalidOrder || e.Code == core.CodeNotFound
}
