package core

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorsFixCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *Error
		kind   Kind
		code   string
		status int
	}{
		{"auth", NewAuthenticationError("bad key"), KindAuthentication, CodeAuthError, http.StatusUnauthorized},
		{"invalid order", NewInvalidOrderError("bad order"), KindInvalidOrder, CodeInvalidOrder, http.StatusBadRequest},
		{"insufficient funds", NewInsufficientFundsError("broke"), KindInsufficientFunds, CodeInsufficientFunds, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Fatalf("%s Kind = %v, want %v", tc.name, tc.err.Kind, tc.kind)
		}
		if tc.err.Code != tc.code {
			t.Fatalf("%s Code = %q, want %q", tc.name, tc.err.Code, tc.code)
		}
		if tc.err.HTTPStatus != tc.status {
			t.Fatalf("%s HTTPStatus = %d, want %d", tc.name, tc.err.HTTPStatus, tc.status)
		}
	}
}

func TestErrorMessageNeverEmpty(t *testing.T) {
	err := NewExchangeError("", "", 0)
	if err.Message == "" {
		t.Fatalf("Message is empty, want fallback text")
	}
}

func TestNormalizePassesSpecificKindsThrough(t *testing.T) {
	original := NewInsufficientFundsError("Insufficient USDT balance. Required: 10, Available: 5")
	got := Normalize(original, "default")
	if got != original {
		t.Fatalf("Normalize() = %v, want the original error unchanged", got)
	}
}

func TestNormalizeRemapsCodedGenericErrors(t *testing.T) {
	cases := []struct {
		code string
		kind Kind
	}{
		{CodeAuthError, KindAuthentication},
		{CodeInvalidOrder, KindInvalidOrder},
		{CodeInvalidSymbol, KindInvalidOrder},
		{CodeNotFound, KindInvalidOrder},
		{CodeInsufficientFunds, KindInsufficientFunds},
	}
	for _, tc := range cases {
		got := Normalize(NewExchangeError("boom", tc.code, 0), "default")
		if got.Kind != tc.kind {
			t.Fatalf("Normalize(code=%s) Kind = %v, want %v", tc.code, got.Kind, tc.kind)
		}
	}
}

func TestNormalizeNotFoundNeverStaysGeneric(t *testing.T) {
	got := Normalize(NewExchangeError("no such order", CodeNotFound, http.StatusNotFound), "default")
	if got.Kind != KindInvalidOrder {
		t.Fatalf("Normalize(NOT_FOUND) Kind = %v, want %v", got.Kind, KindInvalidOrder)
	}
}

func TestNormalizeKeepsUnknownCodeGeneric(t *testing.T) {
	got := Normalize(NewExchangeError("rate limited", "RATE_LIMIT", 429), "default")
	if got.Kind != KindExchange {
		t.Fatalf("Normalize(unknown code) Kind = %v, want %v", got.Kind, KindExchange)
	}
	if got.Code != "RATE_LIMIT" {
		t.Fatalf("Normalize(unknown code) Code = %q, want RATE_LIMIT", got.Code)
	}
}

func TestNormalizeWrapsPlainErrors(t *testing.T) {
	got := Normalize(errors.New("connection reset"), "Failed to get balance for BTC")
	if got.Kind != KindExchange {
		t.Fatalf("Normalize(plain) Kind = %v, want %v", got.Kind, KindExchange)
	}
	if got.Message != "connection reset" {
		t.Fatalf("Normalize(plain) Message = %q, want the original message", got.Message)
	}
}

type codedError struct{ code string }

func (e codedError) Error() string     { return "" }
func (e codedError) ErrorCode() string { return e.code }

func TestNormalizeUsesCoderInterface(t *testing.T) {
	got := Normalize(codedError{code: CodeInsufficientFunds}, "Failed to validate balance")
	if got.Kind != KindInsufficientFunds {
		t.Fatalf("Normalize(coder) Kind = %v, want %v", got.Kind, KindInsufficientFunds)
	}
	if got.Message != "Failed to validate balance" {
		t.Fatalf("Normalize(coder) Message = %q, want default message", got.Message)
	}
}

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil, "default"); got != nil {
		t.Fatalf("Normalize(nil) = %v, want nil", got)
	}
}

func TestAsErrorUnwraps(t *testing.T) {
	wrapped := NewInvalidOrderError("Order not found")
	e, ok := AsError(wrapped)
	if !ok || e.Kind != KindInvalidOrder {
		t.Fatalf("AsError() = %v, %v; want invalid order error", e, ok)
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Fatalf("AsError(plain) = true, want false")
	}
}

func TestIsKind(t *testing.T) {
	err := NewAuthenticationError("nope")
	if !IsKind(err, KindAuthentication) {
		t.Fatalf("IsKind(auth, KindAuthentication) = false, want true")
	}
	if IsKind(err, KindInvalidOrder) {
		t.Fatalf("IsKind(auth, KindInvalidOrder) = true, want false")
	}
}
