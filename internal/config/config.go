package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Env vars consulted when the config file omits credentials, so keys can be
// kept out of checked-in files.
const (
	EnvAPIKey    = "TRADECLI_API_KEY"
	EnvAPISecret = "TRADECLI_API_SECRET"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Limits   LimitsConfig   `yaml:"limits"`
	Log      LogConfig      `yaml:"log"`
}

type ExchangeConfig struct {
	Name           string `yaml:"name"`
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	RestBaseURL    string `yaml:"rest_base_url"`
	RecvWindowMs   int64  `yaml:"recv_window_ms"`
	HTTPTimeoutSec int64  `yaml:"http_timeout_sec"`
}

type LimitsConfig struct {
	// OrderNotionalCap refuses order placement above this quote-asset
	// notional. Zero disables the cap.
	OrderNotionalCap Decimal `yaml:"order_notional_cap"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("config must contain a single YAML document")
		}
		return Config{}, err
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Exchange.Name = strings.ToLower(strings.TrimSpace(c.Exchange.Name))
	c.Exchange.APIKey = strings.TrimSpace(c.Exchange.APIKey)
	c.Exchange.APISecret = strings.TrimSpace(c.Exchange.APISecret)
	c.Exchange.RestBaseURL = strings.TrimSpace(c.Exchange.RestBaseURL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

func (c *Config) applyDefaults() {
	if c.Exchange.APIKey == "" {
		c.Exchange.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if c.Exchange.APISecret == "" {
		c.Exchange.APISecret = strings.TrimSpace(os.Getenv(EnvAPISecret))
	}
	if c.Exchange.RecvWindowMs == 0 {
		c.Exchange.RecvWindowMs = 5000
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	switch c.Exchange.Name {
	case "binance", "mexc":
	case "":
		return fmt.Errorf("exchange name is required")
	default:
		return fmt.Errorf("unsupported exchange %q", c.Exchange.Name)
	}
	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return fmt.Errorf("exchange api_key/api_secret are required (config or %s/%s)", EnvAPIKey, EnvAPISecret)
	}
	if c.Exchange.RecvWindowMs < 1 || c.Exchange.RecvWindowMs > 60000 {
		return fmt.Errorf("exchange recv_window_ms must be between 1 and 60000")
	}
	if c.Exchange.HTTPTimeoutSec < 1 || c.Exchange.HTTPTimeoutSec > 120 {
		return fmt.Errorf("exchange http_timeout_sec must be between 1 and 120")
	}
	if c.Exchange.RestBaseURL != "" {
		if err := validateURL(c.Exchange.RestBaseURL, "http", "https"); err != nil {
			return fmt.Errorf("exchange rest_base_url %v", err)
		}
	}
	if c.Limits.OrderNotionalCap.Cmp(decimal.Zero) < 0 {
		return fmt.Errorf("limits order_notional_cap must be >= 0")
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
