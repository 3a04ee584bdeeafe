package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  api_key: key
  api_secret: secret
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Exchange.RecvWindowMs != 5000 {
		t.Fatalf("RecvWindowMs = %d, want 5000", cfg.Exchange.RecvWindowMs)
	}
	if cfg.Exchange.HTTPTimeoutSec != 15 {
		t.Fatalf("HTTPTimeoutSec = %d, want 15", cfg.Exchange.HTTPTimeoutSec)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if !cfg.Limits.OrderNotionalCap.Equal(decimal.Zero) {
		t.Fatalf("OrderNotionalCap = %s, want 0", cfg.Limits.OrderNotionalCap)
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPISecret, "env-secret")
	path := writeConfig(t, `
exchange:
  name: mexc
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Exchange.APIKey != "env-key" || cfg.Exchange.APISecret != "env-secret" {
		t.Fatalf("credentials = %q/%q, want env values", cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	}
}

func TestLoadNormalizesExchangeName(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: " Binance "
  api_key: key
  api_secret: secret
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Exchange.Name != "binance" {
		t.Fatalf("Name = %q, want binance", cfg.Exchange.Name)
	}
}

func TestLoadParsesNotionalCap(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  api_key: key
  api_secret: secret
limits:
  order_notional_cap: "2500.50"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if !cfg.Limits.OrderNotionalCap.Equal(decimal.RequireFromString("2500.50")) {
		t.Fatalf("OrderNotionalCap = %s, want 2500.50", cfg.Limits.OrderNotionalCap)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  api_key: key
  api_secret: secret
  recv_windw_ms: 3000
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() = nil, want unknown field error")
	}
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: binance
  api_key: key
  api_secret: secret
---
exchange:
  name: mexc
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() = nil, want multi-document error")
	}
}

func TestValidateFailures(t *testing.T) {
	base := func() Config {
		return Config{
			Exchange: ExchangeConfig{
				Name:           "binance",
				APIKey:         "key",
				APISecret:      "secret",
				RecvWindowMs:   5000,
				HTTPTimeoutSec: 15,
			},
		}
	}
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing name", func(c *Config) { c.Exchange.Name = "" }, "exchange name is required"},
		{"unsupported name", func(c *Config) { c.Exchange.Name = "kraken" }, "unsupported exchange"},
		{"missing credentials", func(c *Config) { c.Exchange.APISecret = "" }, "api_key/api_secret are required"},
		{"recv window too large", func(c *Config) { c.Exchange.RecvWindowMs = 70000 }, "recv_window_ms"},
		{"timeout too large", func(c *Config) { c.Exchange.HTTPTimeoutSec = 600 }, "http_timeout_sec"},
		{"bad url scheme", func(c *Config) { c.Exchange.RestBaseURL = "ftp://api.binance.com" }, "rest_base_url"},
		{"url without host", func(c *Config) { c.Exchange.RestBaseURL = "not-a-url" }, "rest_base_url"},
	}
	for _, tc := range cases {
		cfg := base()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: Validate() = nil, want error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: Validate() = %q, want substring %q", tc.name, err, tc.wantMsg)
		}
	}
}

func TestValidateNegativeNotionalCap(t *testing.T) {
	cfg := Config{
		Exchange: ExchangeConfig{
			Name:           "binance",
			APIKey:         "key",
			APISecret:      "secret",
			RecvWindowMs:   5000,
			HTTPTimeoutSec: 15,
		},
		Limits: LimitsConfig{OrderNotionalCap: Decimal{decimal.RequireFromString("-1")}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() = nil, want error for negative cap")
	}
}
