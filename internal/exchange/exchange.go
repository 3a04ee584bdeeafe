package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"trading-client/internal/core"
)

// DefaultHistoryLimit is applied when GetOrderHistory is called with a
// non-positive limit.
const DefaultHistoryLimit = 50

// Adapter is the capability every concrete exchange implements: market
// data, account data, and raw order CRUD. Adapters map wire responses into
// the canonical core types and classify exchange-specific error codes, but
// perform no validation; that lives in Client. Implementations must be
// stateless per call so one Client can be shared across goroutines.
type Adapter interface {
	Name() string

	GetMarkets(ctx context.Context) ([]core.MarketInfo, error)
	GetTicker(ctx context.Context, symbol string) (core.Ticker, error)

	GetBalances(ctx context.Context) ([]core.Balance, error)

	CreateOrder(ctx context.Context, params core.OrderParams) (core.Order, error)
	ModifyOrder(ctx context.Context, symbol, orderID string, params core.OrderParams) (core.Order, error)
	CancelOrder(ctx context.Context, symbol, orderID string) (bool, error)
	GetOrder(ctx context.Context, symbol, orderID string) (core.Order, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]core.Order, error)
	GetOrderHistory(ctx context.Context, symbol string, limit int) ([]core.Order, error)

	Withdraw(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error)
	GetDepositAddress(ctx context.Context, asset string) (string, error)
}

// Credentials are required by every adapter constructor. BaseURL overrides
// the exchange-specific default; reachability is not checked at
// construction time.
type Credentials struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

func (c Credentials) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return core.NewAuthenticationError("API key and secret are required")
	}
	return nil
}
