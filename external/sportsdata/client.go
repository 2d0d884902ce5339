package sportsdata

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://livescore-api.com/api-client"
	defaultLang    = "en"
	maxBodyBytes   = 8 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Key            string
	Secret         string
	Lang           string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client issues signed GET requests to the sports data API. It never
// retries; callers own the retry policy.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	key            string
	secret         string
	lang           string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	lang := strings.TrimSpace(cfg.Lang)
	if lang == "" {
		lang = defaultLang
	}

	breakerCfg := cfg.CircuitBreaker.Normalize()
	breaker := resilience.NewCircuitBreaker(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("sports data circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		key:            strings.TrimSpace(cfg.Key),
		secret:         strings.TrimSpace(cfg.Secret),
		lang:           lang,
		logger:         logger.Named("sportsdata"),
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchJSON performs one GET against path with params plus credentials and
// returns the decoded JSON document.
func (c *Client) FetchJSON(ctx context.Context, path string, params map[string]string) (any, error) {
	fullURL := c.buildURL(path, params)
	masked := MaskURL(fullURL)

	var raw []byte
	call := func() error {
		body, err := c.execute(ctx, fullURL, masked)
		raw = body
		return err
	}

	var err error
	if c.circuitEnabled {
		err = c.breaker.Execute(call, isCircuitFailure)
		if isCircuitOpen(err) {
			c.logger.WarnContext(ctx, "sports data circuit breaker rejected request", "state", c.breaker.State(), "url", masked)
			return nil, newNetworkError(masked, 0, "provider temporarily unavailable", err, false)
		}
	} else {
		err = call()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "sports data request failed", "url", masked, "error", err)
		return nil, err
	}

	var doc any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, newParseError(masked, raw, err)
	}

	if env, ok := doc.(map[string]any); ok {
		if success, present := env["success"]; present && !asBool(success) {
			message := "unsuccessful response"
			if errObj, ok := env["error"].(map[string]any); ok {
				message = firstNonEmpty(getString(errObj, "message"), message)
			} else if text, ok := env["error"].(string); ok {
				message = firstNonEmpty(text, message)
			}
			return nil, newNetworkError(masked, 0, MaskText(message), nil, false)
		}
	}

	c.logger.DebugContext(ctx, "sports data request completed", "url", masked, "bytes", len(raw))
	return doc, nil
}

func (c *Client) buildURL(path string, params map[string]string) string {
	values := url.Values{}
	for key, value := range params {
		if strings.TrimSpace(value) == "" {
			continue
		}
		values.Set(key, value)
	}
	values.Set("key", c.key)
	values.Set("secret", c.secret)
	values.Set("lang", c.lang)

	return c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + values.Encode()
}

func (c *Client) execute(ctx context.Context, fullURL, masked string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, newNetworkError(masked, 0, "build request", nil, false)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newNetworkError(masked, 0, "send request: "+MaskText(err.Error()), nil, true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, newNetworkError(masked, resp.StatusCode, "read response body", err, true)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newNetworkError(masked, resp.StatusCode, "body="+MaskText(abbreviateBody(raw)), nil, isRetryableStatus(resp.StatusCode))
	}
	return raw, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func isCircuitOpen(err error) bool {
	return crerr.Is(err, resilience.ErrCircuitOpen)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
