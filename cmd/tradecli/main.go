package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trading-client/internal/config"
	"trading-client/internal/core"
	"trading-client/internal/exchange"
	"trading-client/internal/exchange/binance"
	"trading-client/internal/exchange/mexc"
	"trading-client/internal/logging"
)

const usage = `usage: tradecli -config <path> <command> [args]

commands:
  markets
  ticker <SYMBOL>
  price <SYMBOL>
  balances
  balance <ASSET>
  place <SYMBOL> <buy|sell> <market|limit> <QTY> [PRICE]
  modify <SYMBOL> <ORDER_ID> <QTY|-> <PRICE|->
  cancel <SYMBOL> <ORDER_ID>
  order <SYMBOL> <ORDER_ID>
  open-orders [SYMBOL]
  history [SYMBOL] [LIMIT]
  close-market <SYMBOL> <ORDER_ID>
  close-limit <SYMBOL> <ORDER_ID> <PRICE>
  withdraw <ASSET> <ADDRESS> <AMOUNT>
  deposit-address <ASSET>

symbols use the canonical BASE-QUOTE form, e.g. BTC-USDT`

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Credentials may live in a .env file next to the config.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err.Error())
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fatal(err.Error())
	}
	defer func() { _ = logger.Sync() }()

	client, err := buildClient(cfg, logger)
	if err != nil {
		fatal(err.Error())
	}

	ctx := context.Background()
	if err := run(ctx, client, cfg, args[0], args[1:]); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fatal(err.Error())
	}
}

func buildClient(cfg config.Config, logger *zap.Logger) (*exchange.Client, error) {
	creds := exchange.Credentials{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		BaseURL:   cfg.Exchange.RestBaseURL,
	}
	timeout := time.Duration(cfg.Exchange.HTTPTimeoutSec) * time.Second

	var (
		adapter exchange.Adapter
		err     error
	)
	switch cfg.Exchange.Name {
	case "binance":
		adapter, err = binance.New(binance.Options{
			Credentials:  creds,
			RecvWindowMs: cfg.Exchange.RecvWindowMs,
			HTTPTimeout:  timeout,
			Logger:       logger,
		})
	case "mexc":
		adapter, err = mexc.New(mexc.Options{
			Credentials:  creds,
			RecvWindowMs: cfg.Exchange.RecvWindowMs,
			HTTPTimeout:  timeout,
			Logger:       logger,
		})
	default:
		err = fmt.Errorf("unsupported exchange %q", cfg.Exchange.Name)
	}
	if err != nil {
		return nil, err
	}
	return exchange.New(adapter, exchange.WithLogger(logger)), nil
}

func run(ctx context.Context, client *exchange.Client, cfg config.Config, command string, args []string) error {
	switch command {
	case "markets":
		markets, err := client.GetMarkets(ctx)
		if err != nil {
			return err
		}
		return printJSON(markets)
	case "ticker":
		requireArgs(args, 1, "ticker <SYMBOL>")
		ticker, err := client.GetTicker(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(ticker)
	case "price":
		requireArgs(args, 1, "price <SYMBOL>")
		price, err := client.CurrentPrice(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(price.String())
		return nil
	case "balances":
		balances, err := client.GetBalances(ctx)
		if err != nil {
			return err
		}
		return printJSON(balances)
	case "balance":
		requireArgs(args, 1, "balance <ASSET>")
		balance, err := client.Balance(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(balance)
	case "place":
		return placeOrder(ctx, client, cfg, args)
	case "modify":
		return modifyOrder(ctx, client, args)
	case "cancel":
		requireArgs(args, 2, "cancel <SYMBOL> <ORDER_ID>")
		ok, err := client.CancelOrder(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	case "order":
		requireArgs(args, 2, "order <SYMBOL> <ORDER_ID>")
		order, err := client.GetOrder(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(order)
	case "open-orders":
		symbol := ""
		if len(args) > 0 {
			symbol = args[0]
		}
		orders, err := client.GetOpenOrders(ctx, symbol)
		if err != nil {
			return err
		}
		return printJSON(orders)
	case "history":
		symbol := ""
		limit := 0
		if len(args) > 0 {
			symbol = args[0]
		}
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fatal("history limit must be an integer")
			}
			limit = n
		}
		orders, err := client.GetOrderHistory(ctx, symbol, limit)
		if err != nil {
			return err
		}
		return printJSON(orders)
	case "close-market":
		requireArgs(args, 2, "close-market <SYMBOL> <ORDER_ID>")
		order, err := client.CloseOrderMarket(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(order)
	case "close-limit":
		requireArgs(args, 3, "close-limit <SYMBOL> <ORDER_ID> <PRICE>")
		price := parseDecimalArg(args[2], "price")
		order, err := client.CloseOrderLimit(ctx, args[0], args[1], price)
		if err != nil {
			return err
		}
		return printJSON(order)
	case "withdraw":
		requireArgs(args, 3, "withdraw <ASSET> <ADDRESS> <AMOUNT>")
		amount := parseDecimalArg(args[2], "amount")
		id, err := client.Withdraw(ctx, args[0], args[1], amount)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	case "deposit-address":
		requireArgs(args, 1, "deposit-address <ASSET>")
		addr, err := client.DepositAddress(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	}
	flag.Usage()
	os.Exit(2)
	return nil
}

func placeOrder(ctx context.Context, client *exchange.Client, cfg config.Config, args []string) error {
	if len(args) < 4 {
		fatal("usage: place <SYMBOL> <buy|sell> <market|limit> <QTY> [PRICE]")
	}
	params := core.OrderParams{
		Symbol:   args[0],
		Side:     core.Side(args[1]),
		Type:     core.OrderType(args[2]),
		Quantity: parseDecimalArg(args[3], "quantity"),
	}
	if len(args) > 4 {
		params.Price = parseDecimalArg(args[4], "price")
	}
	if err := checkNotionalCap(ctx, client, cfg, params); err != nil {
		return err
	}
	order, err := client.CreateOrder(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(order)
}

// checkNotionalCap refuses placement above the configured quote notional.
// The cap is a client-side guard against fat-finger orders, not an exchange
// rule.
func checkNotionalCap(ctx context.Context, client *exchange.Client, cfg config.Config, params core.OrderParams) error {
	limit := cfg.Limits.OrderNotionalCap.Decimal
	if limit.Cmp(decimal.Zero) <= 0 {
		return nil
	}
	price := params.Price
	if price.Cmp(decimal.Zero) <= 0 {
		current, err := client.CurrentPrice(ctx, params.Symbol)
		if err != nil {
			return err
		}
		price = current
	}
	notional := params.Quantity.Mul(price)
	if notional.Cmp(limit) > 0 {
		return fmt.Errorf("order notional %s exceeds configured cap %s", notional, limit)
	}
	return nil
}

func modifyOrder(ctx context.Context, client *exchange.Client, args []string) error {
	if len(args) < 4 {
		fatal("usage: modify <SYMBOL> <ORDER_ID> <QTY|-> <PRICE|->")
	}
	var changes core.OrderParams
	if args[2] != "-" {
		changes.Quantity = parseDecimalArg(args[2], "quantity")
	}
	if args[3] != "-" {
		changes.Price = parseDecimalArg(args[3], "price")
	}
	order, err := client.ModifyOrder(ctx, args[0], args[1], changes)
	if err != nil {
		return err
	}
	return printJSON(order)
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fatal("usage: " + usage)
	}
}

func parseDecimalArg(raw, name string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		fatal(fmt.Sprintf("invalid %s %q", name, raw))
	}
	return v
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
