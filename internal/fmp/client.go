// Package fmp is a small client for the Financial Modeling Prep REST API.
package fmp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

var (
	ErrNotConfigured = errors.New("FMP_API_KEY not configured")
	ErrNotFound      = errors.New("symbol not found")
)

// StatusError is returned when FMP answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("FMP API error: %s", e.Status)
}

type Quote struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	ChangesPercentage *float64 `json:"changesPercentage"`
	Change            *float64 `json:"change"`
	Volume            *float64 `json:"volume"`
	MarketCap         *float64 `json:"marketCap"`
	PE                *float64 `json:"pe"`
	Exchange          string   `json:"exchange"`
}

type Profile struct {
	Symbol      string   `json:"symbol"`
	CompanyName string   `json:"companyName"`
	Currency    string   `json:"currency"`
	Exchange    string   `json:"exchangeShortName"`
	Industry    string   `json:"industry"`
	Sector      string   `json:"sector"`
	Country     string   `json:"country"`
	MarketCap   *float64 `json:"mktCap"`
	Price       *float64 `json:"price"`
	Beta        *float64 `json:"beta"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Image       string   `json:"image"`
}

type RatiosTTM struct {
	PriceToBook      *float64 `json:"priceToBookRatioTTM"`
	PriceToCashFlow  *float64 `json:"priceCashFlowRatioTTM"`
	DividendYield    *float64 `json:"dividendYieldTTM"`
	DividendYieldAlt *float64 `json:"dividendYielTTM"`
	PERatio          *float64 `json:"peRatioTTM"`
}

// Yield prefers the correctly spelled field; FMP has served both.
func (r RatiosTTM) Yield() *float64 {
	if r.DividendYield != nil {
		return r.DividendYield
	}
	return r.DividendYieldAlt
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client limited to ratePerSec requests per second. The
// circuit opens after five consecutive upstream failures.
func NewClient(apiKey, baseURL string, ratePerSec float64) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "fmp",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// A missing symbol or a malformed request is not an outage.
				var se *StatusError
				if errors.As(err, &se) {
					return se.StatusCode < 500 &&
						se.StatusCode != http.StatusTooManyRequests &&
						se.StatusCode != http.StatusUnauthorized
				}
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				utils.Zlog.Warn("FMP circuit breaker state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// Quotes fetches quotes for up to ~100 symbols in one call. Unknown symbols are
// absent from the result.
func (c *Client) Quotes(ctx context.Context, symbols []string) ([]Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	escaped := make([]string, len(symbols))
	for i, symbol := range symbols {
		escaped[i] = url.PathEscape(symbol)
	}
	body, err := c.get(ctx, "/quote/"+strings.Join(escaped, ","), nil)
	if err != nil {
		return nil, err
	}
	var quotes []Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	return quotes, nil
}

func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	quotes, err := c.Quotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNotFound
	}
	return &quotes[0], nil
}

func (c *Client) Profile(ctx context.Context, symbol string) (*Profile, error) {
	body, err := c.get(ctx, "/profile/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	var profiles []Profile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if len(profiles) == 0 || profiles[0].Symbol == "" {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

// KeyMetrics returns annual key metrics, newest first, passed through as FMP sends them.
func (c *Client) KeyMetrics(ctx context.Context, symbol string, limit int) ([]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", fmt.Sprint(limit))
	body, err := c.get(ctx, "/key-metrics/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, err
	}
	var metrics []map[string]interface{}
	if err := json.Unmarshal(body, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode key metrics: %w", err)
	}
	return metrics, nil
}

func (c *Client) RatiosTTM(ctx context.Context, symbol string) (*RatiosTTM, error) {
	body, err := c.get(ctx, "/ratios-ttm/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, err
	}
	var ratios []RatiosTTM
	if err := json.Unmarshal(body, &ratios); err != nil {
		return nil, fmt.Errorf("failed to decode ratios: %w", err)
	}
	if len(ratios) == 0 {
		return nil, ErrNotFound
	}
	return &ratios[0], nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: truncate(string(body), 200)}
		}
		if msg := errorMessage(body); msg != "" {
			return nil, messageError(msg)
		}
		return body, nil
	})
}

// errorMessage extracts FMP's {"Error Message": "..."} payload, which is sent
// with a 200 status.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var payload struct {
		Message string `json:"Error Message"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// messageError maps an "Error Message" payload onto the status FMP would have
// used: quota exhaustion is 429, key problems are 401, anything else 400.
// Missing symbols are signalled by empty arrays, never by this payload.
func messageError(msg string) *StatusError {
	lower := strings.ToLower(msg)
	code := http.StatusBadRequest
	switch {
	case strings.Contains(lower, "limit reach"):
		code = http.StatusTooManyRequests
	case strings.Contains(lower, "api key"), strings.Contains(lower, "apikey"):
		code = http.StatusUnauthorized
	}
	return &StatusError{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Body:       truncate(msg, 200),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
