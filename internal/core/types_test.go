package core

import "testing"

func TestSplitSymbol(t *testing.T) {
	base, quote, ok := SplitSymbol("BTC-USDT")
	if !ok || base != "BTC" || quote != "USDT" {
		t.Fatalf("SplitSymbol(BTC-USDT) = %q, %q, %v; want BTC, USDT, true", base, quote, ok)
	}
	for _, bad := range []string{"BTCUSDT", "BTC-", "-USDT", ""} {
		if _, _, ok := SplitSymbol(bad); ok {
			t.Fatalf("SplitSymbol(%q) ok = true, want false", bad)
		}
	}
}

func TestSideOpposite(t *testing.T) {
	if got := Buy.Opposite(); got != Sell {
		t.Fatalf("Buy.Opposite() = %v, want %v", got, Sell)
	}
	if got := Sell.Opposite(); got != Buy {
		t.Fatalf("Sell.Opposite() = %v, want %v", got, Buy)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, st := range []OrderStatus{OrderFilled, OrderCanceled, OrderRejected} {
		if !st.Terminal() {
			t.Fatalf("%v.Terminal() = false, want true", st)
		}
	}
	for _, st := range []OrderStatus{OrderNew, OrderPartiallyFilled} {
		if st.Terminal() {
			t.Fatalf("%v.Terminal() = true, want false", st)
		}
	}
}
