package briefingschedule

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/scheduler"
	"github.com/gobapps/gob-api/internal/utils"
)

const (
	ConfigKey      = "briefing_schedule"
	ConfigCategory = "briefing"
)

var ErrInvalidSchedule = errors.New("invalid briefing schedule")

type ConfigStore interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	PutJSON(ctx context.Context, key, category, description string, v interface{}) error
}

type Service struct {
	store ConfigStore
}

func NewService(store ConfigStore) *Service {
	return &Service{store: store}
}

// Load implements scheduler.ScheduleSource. Fields absent from the stored
// value keep their defaults.
func (s *Service) Load(ctx context.Context) (scheduler.Schedule, error) {
	schedule := scheduler.DefaultSchedule()
	if _, err := s.store.GetJSON(ctx, ConfigKey, &schedule); err != nil {
		return scheduler.Schedule{}, err
	}
	return schedule, nil
}

// Update applies per-slot overrides to the current schedule and persists the
// result when it is valid.
func (s *Service) Update(ctx context.Context, o scheduler.Overrides) (scheduler.Schedule, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return scheduler.Schedule{}, err
	}
	next := current.Apply(o)
	if err := next.Validate(); err != nil {
		return scheduler.Schedule{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if err := s.store.PutJSON(ctx, ConfigKey, ConfigCategory, "Scheduled briefing times", next); err != nil {
		return scheduler.Schedule{}, err
	}
	utils.Zlog.Info("Briefing schedule updated",
		zap.Any("morning", next.Morning),
		zap.Any("midday", next.Midday),
		zap.Any("evening", next.Evening))
	return next, nil
}
