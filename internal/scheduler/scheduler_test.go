package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/briefing"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func TestDueSlots(t *testing.T) {
	ny := newYork(t)
	s := DefaultSchedule()

	assert.Equal(t, []string{SlotMorning}, DueSlots(s, time.Date(2026, 10, 15, 7, 20, 0, 0, ny)))
	assert.Equal(t, []string{SlotMorning}, DueSlots(s, time.Date(2026, 10, 15, 7, 20, 59, 0, ny)))
	assert.Empty(t, DueSlots(s, time.Date(2026, 10, 15, 7, 21, 0, 0, ny)))
	assert.Equal(t, []string{SlotEvening}, DueSlots(s, time.Date(2026, 10, 15, 16, 20, 0, 0, ny).UTC()))

	s.Midday.Enabled = false
	assert.Empty(t, DueSlots(s, time.Date(2026, 10, 15, 11, 50, 0, 0, ny)))
}

func TestDueSlotsPerSlotTimezone(t *testing.T) {
	s := DefaultSchedule()
	s.Morning.Timezone = "Europe/Paris"
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	assert.Equal(t, []string{SlotMorning}, DueSlots(s, time.Date(2026, 10, 15, 7, 20, 0, 0, paris)))
}

func TestValidateAndApply(t *testing.T) {
	require.NoError(t, DefaultSchedule().Validate())

	hour := 24
	bad := DefaultSchedule().Apply(Overrides{Morning: &SlotOverride{Hour: &hour}})
	assert.Error(t, bad.Validate())

	tz := "Mars/Olympus"
	assert.Error(t, DefaultSchedule().Apply(Overrides{Evening: &SlotOverride{Timezone: &tz}}).Validate())

	minute := 5
	off := false
	s := DefaultSchedule().Apply(Overrides{Midday: &SlotOverride{Minute: &minute, Enabled: &off}})
	require.NoError(t, s.Validate())
	assert.Equal(t, 11, s.Midday.Hour)
	assert.Equal(t, 5, s.Midday.Minute)
	assert.False(t, s.Midday.Enabled)
	assert.Equal(t, DefaultSchedule().Morning, s.Morning)
}

type staticSchedule struct {
	s   Schedule
	err error
}

func (f staticSchedule) Load(ctx context.Context) (Schedule, error) { return f.s, f.err }

type fakeBriefings struct {
	types []briefing.Type
	err   error
}

func (f *fakeBriefings) Run(ctx context.Context, req briefing.Request) (*briefing.Result, error) {
	f.types = append(f.types, req.Type)
	if f.err != nil {
		return nil, f.err
	}
	return &briefing.Result{Type: req.Type}, nil
}

func TestTickRunsDueBriefings(t *testing.T) {
	ny := newYork(t)
	runs := &fakeBriefings{}
	r := NewRunner(context.Background(), staticSchedule{s: DefaultSchedule()}, runs, nil, "")

	due := r.Tick(context.Background(), time.Date(2026, 10, 15, 11, 50, 0, 0, ny))
	assert.Equal(t, []string{SlotMidday}, due)
	assert.Equal(t, []briefing.Type{briefing.TypeMidday}, runs.types)

	r.Tick(context.Background(), time.Date(2026, 10, 15, 12, 0, 0, 0, ny))
	assert.Len(t, runs.types, 1)
}

func TestTickScheduleErrorRunsNothing(t *testing.T) {
	runs := &fakeBriefings{}
	r := NewRunner(context.Background(), staticSchedule{err: errors.New("db down")}, runs, nil, "")

	assert.Nil(t, r.Tick(context.Background(), time.Now()))
	assert.Empty(t, runs.types)
}
