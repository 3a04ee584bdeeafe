package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading-client/internal/core"
	"trading-client/internal/metrics"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	// Exchange labels metrics and log lines; adapters pass their name.
	Exchange string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client performs the actual HTTP exchange and maps every wire-level
// failure into the error taxonomy. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	exchange   string
	httpClient *http.Client
	log        *zap.Logger
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exchange := opts.Exchange
	if exchange == "" {
		exchange = "unknown"
	}
	return &Client{
		exchange:   exchange,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// Do issues one request and returns the parsed JSON body on success. For
// GET and DELETE the params are serialized as URL query parameters; for
// POST and PUT they are form-encoded into the body.
func (c *Client) Do(ctx context.Context, method, rawURL string, headers http.Header, params url.Values) (json.RawMessage, error) {
	metrics.RequestsTotal.WithLabelValues(c.exchange, method).Inc()
	start := time.Now()
	body, err := c.do(ctx, method, rawURL, headers, params)
	metrics.RequestDuration.WithLabelValues(c.exchange).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestErrors.WithLabelValues(c.exchange, errKind(err)).Inc()
		c.log.Warn("request failed",
			zap.String("exchange", c.exchange),
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Error(err))
		return nil, err
	}
	c.log.Debug("request ok",
		zap.String("exchange", c.exchange),
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers http.Header, params url.Values) (json.RawMessage, error) {
	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet || method == http.MethodDelete {
		if encoded := params.Encode(); encoded != "" {
			sep := "?"
			if strings.Contains(rawURL, "?") {
				sep = "&"
			}
			rawURL += sep + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, rawURL, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, rawURL, strings.NewReader(params.Encode()))
	}
	if err != nil {
		return nil, core.NewInvalidOrderError(fmt.Sprintf("invalid request: %v", err))
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if method != http.MethodGet && method != http.MethodDelete && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewExchangeError(fmt.Sprintf("network error: %v", err), core.CodeNetworkError, 0)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewExchangeError(fmt.Sprintf("network error: %v", err), core.CodeNetworkError, 0)
	}
	if resp.StatusCode/100 != 2 {
		return nil, mapFailure(resp.StatusCode, req.URL.Path, body)
	}
	if !json.Valid(body) {
		return nil, core.NewExchangeError("invalid response body", core.CodeInvalidResponse, resp.StatusCode)
	}
	return body, nil
}

// wireError is the tolerant shape of an exchange error payload. Code may be
// a string ("INVALID_ORDER") or a number (-2010); both are kept as text so
// adapters can classify exchange-specific numeric codes afterwards.
type wireError struct {
	Code json.RawMessage `json:"code"`
	Msg  string          `json:"msg"`
}

func mapFailure(status int, path string, body []byte) *core.Error {
	var wire wireError
	_ = json.Unmarshal(body, &wire)
	code := codeString(wire.Code)
	msg := strings.TrimSpace(wire.Msg)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}

	if status == http.StatusUnauthorized || code == core.CodeAuthError {
		return core.NewAuthenticationError(msg)
	}
	if status == http.StatusNotFound {
		if isOrderPath(path) {
			return core.NewInvalidOrderError("Order not found")
		}
		return core.NewExchangeError(msg, core.CodeNotFound, status)
	}
	switch code {
	case core.CodeInvalidOrder, core.CodeInvalidSymbol:
		return core.NewInvalidOrderError(msg)
	case core.CodeInsufficientFunds:
		return core.NewInsufficientFundsError(msg)
	case core.CodeNotFound:
		return core.NewInvalidOrderError(msg)
	}
	return core.NewExchangeError(msg, code, status)
}

func codeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

func isOrderPath(path string) bool {
	return strings.Contains(strings.ToLower(path), "order")
}

func errKind(err error) string {
	if e, ok := core.AsError(err); ok {
		return e.Kind.String()
	}
	return "unknown"
}
