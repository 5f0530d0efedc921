package companydata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gobapps/gob-api/internal/fmp"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/utils"
)

const keyMetricsYears = 30

// Provider is the subset of the FMP client behind the single-symbol route.
type Provider interface {
	Profile(ctx context.Context, symbol string) (*fmp.Profile, error)
	Quote(ctx context.Context, symbol string) (*fmp.Quote, error)
	KeyMetrics(ctx context.Context, symbol string, limit int) ([]map[string]interface{}, error)
}

type Service struct {
	provider     Provider
	internalBase string
	client       *http.Client
}

func NewService(provider Provider, internalBase string) *Service {
	return &Service{
		provider:     provider,
		internalBase: strings.TrimRight(internalBase, "/"),
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Company enriches one symbol. The profile decides existence; quote and key
// metrics are fetched concurrently afterwards and a quote miss is tolerated.
func (s *Service) Company(ctx context.Context, symbol string) (*CompanyData, error) {
	profile, err := s.provider.Profile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var (
		quote      *fmp.Quote
		keyMetrics []map[string]interface{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.provider.Quote(gctx, symbol)
		if err != nil && !errors.Is(err, fmp.ErrNotFound) {
			return fmt.Errorf("quote: %w", err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		m, err := s.provider.KeyMetrics(gctx, symbol, keyMetricsYears)
		if err != nil {
			return fmt.Errorf("key metrics: %w", err)
		}
		keyMetrics = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if keyMetrics == nil {
		keyMetrics = []map[string]interface{}{}
	}

	logo := profile.Image
	if logo == "" {
		logo = "https://financialmodelingprep.com/image-stock/" + symbol + ".png"
	}
	data := &CompanyData{
		Success: true,
		Info: CompanyInfo{
			Symbol:      symbol,
			Name:        profile.CompanyName,
			Sector:      profile.Sector,
			Industry:    profile.Industry,
			MarketCap:   formatMarketCap(profile.MarketCap),
			Logo:        logo,
			Country:     profile.Country,
			Exchange:    profile.Exchange,
			Currency:    profile.Currency,
			Beta:        profile.Beta,
			Description: profile.Description,
			Website:     profile.Website,
		},
		Quote:        quote,
		CurrentPrice: profile.Price,
		Data:         keyMetrics,
	}
	if quote != nil && quote.Price != nil {
		data.CurrentPrice = quote.Price
	}
	if data.Info.Currency == "" {
		data.Info.Currency = "USD"
	}
	return data, nil
}

// Batch calls the single-symbol endpoint once per symbol, all concurrently.
// Every call settles independently; results keep the input order.
func (s *Service) Batch(ctx context.Context, symbols []string) (*BatchResponse, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if len(symbols) > MaxBatchSymbols {
		return nil, ErrTooManySymbols
	}

	results := make([]BatchItem, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i] = s.fetchOne(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	resp := &BatchResponse{Success: true, Results: results, Stats: BatchStats{Total: len(results)}}
	for _, r := range results {
		if r.Success {
			resp.Stats.Success++
			metrics.FanoutResultsTotal.WithLabelValues("success").Inc()
		} else {
			resp.Stats.Errors++
			metrics.FanoutResultsTotal.WithLabelValues("error").Inc()
		}
	}
	utils.Zlog.Info("Company data batch completed",
		zap.Int("total", resp.Stats.Total),
		zap.Int("success", resp.Stats.Success),
		zap.Int("errors", resp.Stats.Errors))
	return resp, nil
}

func (s *Service) fetchOne(ctx context.Context, symbol string) BatchItem {
	item := BatchItem{Symbol: symbol}
	target := s.internalBase + "/api/fmp-company-data?symbol=" + url.QueryEscape(symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	resp, err := s.client.Do(req)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		item.Error = fmt.Sprintf("failed to read response: %v", err)
		return item
	}
	item.Status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		item.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, upstreamMessage(body, resp.Status))
		return item
	}
	if !json.Valid(body) {
		item.Error = "invalid JSON response"
		return item
	}
	item.Success = true
	item.Data = json.RawMessage(body)
	return item
}

// upstreamMessage extracts the error field of an error envelope, falling back
// to the status text.
func upstreamMessage(body []byte, status string) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return status
}
