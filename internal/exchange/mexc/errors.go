package mexc

import (
	"trading-client/internal/core"
)

// MEXC API error codes that map onto the taxonomy.
const (
	apiCodeAPIKeyInvalid    = "10072"
	apiCodeSignatureInvalid = "700002"
	apiCodeInsufficient     = "30004"
	apiCodeOversold         = "30005"
	apiCodeInvalidSymbol    = "30016"
	apiCodeOrderNotFound    = "-2013"
)

// classifyError refines generic transport errors using MEXC error codes.
func classifyError(err error) error {
	e, ok := core.AsError(err)
	if !ok || e.Kind != core.KindExchange {
		return err
	}
	switch e.Code {
	case apiCodeAPIKeyInvalid, apiCodeSignatureInvalid:
		return core.NewAuthenticationError(e.Message)
	case apiCodeInsufficient, apiCodeOversold:
		return core.NewInsufficientFundsError(e.Message)
	case apiCodeInvalidSymbol:
		return core.NewInvalidOrderError(e.Message)
	case apiCodeOrderNotFound:
		return &core.Error{
			Kind:       core.KindInvalidOrder,
			Message:    e.Message,
			Code:       core.CodeNotFound,
			HTTPStatus: e.HTTPStatus,
		}
	}
	return err
}
