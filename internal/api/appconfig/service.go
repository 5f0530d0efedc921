package appconfig

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

type Store interface {
	GetConfig(ctx context.Context, key string, activeOnly bool) (*types.AppConfigEntry, error)
	ListConfig(ctx context.Context, category string) ([]types.AppConfigEntry, error)
	UpsertConfig(ctx context.Context, entry types.AppConfigEntry) (*types.AppConfigEntry, error)
	DeactivateConfig(ctx context.Context, key string) (bool, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns the active row for key. With includeInactive a soft-deleted row
// is returned too.
func (s *Service) Get(ctx context.Context, key string, includeInactive bool) (*types.AppConfigEntry, error) {
	entry, err := s.store.GetConfig(ctx, key, !includeInactive)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, category string) ([]types.AppConfigEntry, error) {
	entries, err := s.store.ListConfig(ctx, category)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.AppConfigEntry{}
	}
	return entries, nil
}

func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*types.AppConfigEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	stored, err := s.store.UpsertConfig(ctx, types.AppConfigEntry{
		ConfigKey:      req.ConfigKey,
		ConfigCategory: req.ConfigCategory,
		ConfigValue:    normalizeValue(req.ConfigValue),
		Description:    req.Description,
		IsActive:       true,
		UpdatedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	utils.Zlog.Info("Config upserted",
		zap.String("key", stored.ConfigKey),
		zap.String("category", stored.ConfigCategory))
	return stored, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	found, err := s.store.DeactivateConfig(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	utils.Zlog.Info("Config deactivated", zap.String("key", key))
	return nil
}

// GetJSON decodes the active value of key into dst. It reports false when the
// key has no active row.
func (s *Service) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	entry, err := s.store.GetConfig(ctx, key, true)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}
	if err := json.Unmarshal(entry.ConfigValue, dst); err != nil {
		return true, fmt.Errorf("failed to decode config %q: %w", key, err)
	}
	return true, nil
}

// PutJSON stores v under key.
func (s *Service) PutJSON(ctx context.Context, key, category, description string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode config %q: %w", key, err)
	}
	_, err = s.Upsert(ctx, UpsertRequest{
		ConfigKey:      key,
		ConfigCategory: category,
		ConfigValue:    raw,
		Description:    description,
	})
	return err
}
