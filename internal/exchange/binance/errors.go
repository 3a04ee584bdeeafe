package binance

import (
	"strings"

	"trading-client/internal/core"
)

// Binance API error codes that map onto the taxonomy.
const (
	apiCodeUnauthorized     = "-1022"
	apiCodeInvalidSymbol    = "-1121"
	apiCodeNewOrderRejected = "-2010"
	apiCodeCancelRejected   = "-2011"
	apiCodeOrderNotFound    = "-2013"
	apiCodeBadAPIKey        = "-2014"
	apiCodeRejectedAPIKey   = "-2015"
)

var insufficientBalanceMsgs = []string{
	"account has insufficient balance for requested action.",
	"balance is insufficient.",
}

// classifyError refines generic transport errors using Binance numeric
// codes. Errors the transport already classified pass through unchanged.
func classifyError(err error) error {
	e, ok := core.AsError(err)
	if !ok || e.Kind != core.KindExchange {
		return err
	}
	msg := strings.ToLower(strings.TrimSpace(e.Message))
	switch e.Code {
	case apiCodeUnauthorized, apiCodeBadAPIKey, apiCodeRejectedAPIKey:
		return core.NewAuthenticationError(e.Message)
	case apiCodeInvalidSymbol:
		return core.NewInvalidOrderError(e.Message)
	case apiCodeOrderNotFound, apiCodeCancelRejected:
		return &core.Error{
			Kind:       core.KindInvalidOrder,
			Message:    e.Message,
			Code:       core.CodeNotFound,
			HTTPStatus: e.HTTPStatus,
		}
	case apiCodeNewOrderRejected:
		for _, known := range insufficientBalanceMsgs {
			if msg == known {
				return core.NewInsufficientFundsError(e.Message)
			}
		}
		return core.NewInvalidOrderError(e.Message)
	}
	return err
}
