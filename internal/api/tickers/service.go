package tickers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

type Store interface {
	ListTickers(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error)
	GetTicker(ctx context.Context, ticker string) (*types.TickerRegistryRow, error)
	UpsertTicker(ctx context.Context, row types.TickerRegistryRow) error
	DeactivateTicker(ctx context.Context, ticker string) (bool, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func inTeam(s types.TickerSource) bool {
	return s == types.TickerSourceTeam || s == types.TickerSourceBoth
}

func inWatchlist(s types.TickerSource) bool {
	return s == types.TickerSourceWatchlist || s == types.TickerSourceBoth
}

// Team splits the active registry into team and watchlist lists; a "both"
// ticker appears in each. Store order (priority desc, ticker) is kept.
func (s *Service) Team(ctx context.Context) (*TeamResponse, error) {
	rows, err := s.store.ListTickers(ctx, true)
	if err != nil {
		return nil, err
	}
	resp := &TeamResponse{
		Success:   true,
		Team:      []types.TickerRegistryRow{},
		Watchlist: []types.TickerRegistryRow{},
	}
	for _, r := range rows {
		if inTeam(r.Source) {
			resp.Team = append(resp.Team, r)
		}
		if inWatchlist(r.Source) {
			resp.Watchlist = append(resp.Watchlist, r)
		}
	}
	resp.Count = len(resp.Team)
	return resp, nil
}

// AddToTeam puts a ticker on the team list. An active watchlist ticker
// becomes "both". It reports whether the row was new.
func (s *Service) AddToTeam(ctx context.Context, req TeamRequest) (*types.TickerRegistryRow, bool, error) {
	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.store.GetTicker(ctx, ticker)
	if err != nil {
		return nil, false, err
	}

	row := types.TickerRegistryRow{
		Ticker:      ticker,
		Source:      types.TickerSourceTeam,
		IsActive:    true,
		CompanyName: req.CompanyName,
		Priority:    1,
		UpdatedAt:   s.now().UTC(),
	}
	if existing != nil {
		row.Priority = existing.Priority
		if row.CompanyName == "" {
			row.CompanyName = existing.CompanyName
		}
		row.Exchange = existing.Exchange
		row.Country = existing.Country
		if existing.IsActive && inWatchlist(existing.Source) {
			row.Source = types.TickerSourceBoth
		}
	}
	if req.Priority != nil {
		row.Priority = *req.Priority
	}

	if err := s.store.UpsertTicker(ctx, row); err != nil {
		return nil, false, err
	}
	utils.Zlog.Info("Ticker added to team", zap.String("ticker", ticker), zap.String("source", string(row.Source)))
	return &row, existing == nil, nil
}

// RemoveFromTeam takes a ticker off the team list. A "both" ticker stays on
// the watchlist; any other team ticker is deactivated.
func (s *Service) RemoveFromTeam(ctx context.Context, raw string) (string, error) {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return "", err
	}
	existing, err := s.store.GetTicker(ctx, ticker)
	if err != nil {
		return "", err
	}
	if existing == nil || !existing.IsActive || !inTeam(existing.Source) {
		return "", ErrNotFound
	}

	if existing.Source == types.TickerSourceBoth {
		existing.Source = types.TickerSourceWatchlist
		existing.UpdatedAt = s.now().UTC()
		if err := s.store.UpsertTicker(ctx, *existing); err != nil {
			return "", err
		}
		return fmt.Sprintf("Ticker %s removed from team (now watchlist only)", ticker), nil
	}

	if _, err := s.store.DeactivateTicker(ctx, ticker); err != nil {
		return "", err
	}
	utils.Zlog.Info("Ticker removed from team", zap.String("ticker", ticker))
	return fmt.Sprintf("Ticker %s removed from team", ticker), nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]types.TickerRegistryRow, error) {
	rows, err := s.store.ListTickers(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []types.TickerRegistryRow{}
	}
	return rows, nil
}

func (s *Service) Upsert(ctx context.Context, req RegistryRequest) (*types.TickerRegistryRow, error) {
	ticker, err := NormalizeTicker(req.Ticker)
	if err != nil {
		return nil, err
	}
	if !req.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidTicker, req.Source)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	row := types.TickerRegistryRow{
		Ticker:      ticker,
		Source:      req.Source,
		IsActive:    active,
		CompanyName: req.CompanyName,
		Exchange:    req.Exchange,
		Country:     req.Country,
		Priority:    req.Priority,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.store.UpsertTicker(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Service) Deactivate(ctx context.Context, raw string) error {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return err
	}
	found, err := s.store.DeactivateTicker(ctx, ticker)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	utils.Zlog.Info("Ticker deactivated", zap.String("ticker", ticker))
	return nil
}
