package core

import (
	"errors"
	"net/http"
)

// Kind tags every caller-visible failure. The set is closed: nothing below
// the exchange layer may surface an error that is not one of these.
type Kind int

const (
	KindExchange Kind = iota
	KindAuthentication
	KindInvalidOrder
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindInvalidOrder:
		return "invalid_order"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "exchange"
	}
}

// Machine codes carried by classified errors. Transport failures reuse the
// same namespace so the normalization funnel can re-map them.
const (
	CodeAuthError         = "AUTH_ERROR"
	CodeInvalidOrder      = "INVALID_ORDER"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeInvalidSymbol     = "INVALID_SYMBOL"
	CodeNotFound          = "NOT_FOUND"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeInvalidResponse   = "INVALID_RESPONSE"
)

// Error is the single error type of the taxonomy: a kind tag plus a human
// message, an optional machine code, and an optional HTTP status mirror.
type Error struct {
	Kind       Kind
	Message    string
	Code       string
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Message + " (" + e.Code + ")"
	}
	return e.Message
}

// Is makes errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && (other.Code == "" || e.Code == other.Code)
}

func newError(kind Kind, msg, code string, status int) *Error {
	if msg == "" {
		msg = "exchange error"
	}
	return &Error{Kind: kind, Message: msg, Code: code, HTTPStatus: status}
}

// NewExchangeError builds the generic, unclassified kind. Code and status
// may be zero when the underlying failure carried none.
func NewExchangeError(msg, code string, status int) *Error {
	return newError(KindExchange, msg, code, status)
}

func NewAuthenticationError(msg string) *Error {
	return newError(KindAuthentication, msg, CodeAuthError, http.StatusUnauthorized)
}

func NewInvalidOrderError(msg string) *Error {
	return newError(KindInvalidOrder, msg, CodeInvalidOrder, http.StatusBadRequest)
}

func NewInsufficientFundsError(msg string) *Error {
	return newError(KindInsufficientFunds, msg, CodeInsufficientFunds, http.StatusBadRequest)
}

// AsError unwraps err into a taxonomy error if it is one.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// Coder is satisfied by failures that carry a machine code without being
// taxonomy errors yet (adapter-side classifications).
type Coder interface {
	ErrorCode() string
}

// Normalize is the single funnel translating an arbitrary failure into the
// taxonomy. Specific kinds pass through untouched; a generic exchange error
// carrying a classifying code is re-mapped to its specific kind; anything
// else becomes a generic exchange error using the failure's message or,
// failing that, defaultMsg.
func Normalize(err error, defaultMsg string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		if e.Kind != KindExchange {
			return e
		}
		if mapped := fromCode(e.Code, e.Message); mapped != nil {
			return mapped
		}
		return e
	}
	var coder Coder
	if errors.As(err, &coder) {
		if mapped := fromCode(coder.ErrorCode(), messageOr(err, defaultMsg)); mapped != nil {
			return mapped
		}
		return NewExchangeError(messageOr(err, defaultMsg), coder.ErrorCode(), 0)
	}
	return NewExchangeError(messageOr(err, defaultMsg), "", 0)
}

func fromCode(code, msg string) *Error {
	switch code {
	case CodeAuthError:
		return NewAuthenticationError(msg)
	case CodeInvalidOrder, CodeInvalidSymbol, CodeNotFound:
		return NewInvalidOrderError(msg)
	case CodeInsufficientFunds:
		return NewInsufficientFundsError(msg)
	}
	return nil
}

func messageOr(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
