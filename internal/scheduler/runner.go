// Package scheduler triggers scheduled briefings and periodic cache syncs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/briefing"
	"github.com/gobapps/gob-api/internal/utils"
)

const minuteSpec = "0 * * * * *"

var slotTypes = map[string]briefing.Type{
	SlotMorning: briefing.TypeMorning,
	SlotMidday:  briefing.TypeMidday,
	SlotEvening: briefing.TypeEvening,
}

type BriefingRunner interface {
	Run(ctx context.Context, req briefing.Request) (*briefing.Result, error)
}

type ScheduleSource interface {
	Load(ctx context.Context) (Schedule, error)
}

// SyncTrigger enqueues a ticker cache refresh and returns its job id.
type SyncTrigger interface {
	TriggerSync(ctx context.Context, tickers []string) (string, error)
}

type Runner struct {
	cron      *cron.Cron
	baseCtx   context.Context
	schedules ScheduleSource
	briefings BriefingRunner
	sync      SyncTrigger
	syncSpec  string
	now       func() time.Time
}

func NewRunner(baseCtx context.Context, schedules ScheduleSource, briefings BriefingRunner, sync SyncTrigger, syncSpec string) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:      cron.New(cron.WithSeconds()),
		baseCtx:   baseCtx,
		schedules: schedules,
		briefings: briefings,
		sync:      sync,
		syncSpec:  syncSpec,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the cron loop.
func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(minuteSpec, func() { r.Tick(r.baseCtx, r.now()) }); err != nil {
		return fmt.Errorf("failed to schedule briefing tick: %w", err)
	}
	if r.sync != nil && r.syncSpec != "" {
		if _, err := r.cron.AddFunc(r.syncSpec, r.triggerSync); err != nil {
			return fmt.Errorf("failed to schedule sync %q: %w", r.syncSpec, err)
		}
	}
	r.cron.Start()
	utils.Zlog.Info("Scheduler started", zap.String("syncCron", r.syncSpec))
	return nil
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	utils.Zlog.Info("Scheduler stopped")
}

// Tick runs every briefing due at now. Runs are sequential; one failure does
// not prevent the next slot.
func (r *Runner) Tick(ctx context.Context, now time.Time) []string {
	schedule, err := r.schedules.Load(ctx)
	if err != nil {
		utils.Zlog.Error("Failed to load briefing schedule", zap.Error(err))
		return nil
	}

	due := DueSlots(schedule, now)
	for _, slot := range due {
		res, err := r.briefings.Run(ctx, briefing.Request{Type: slotTypes[slot]})
		if err != nil {
			utils.Zlog.Error("Scheduled briefing failed", zap.String("slot", slot), zap.Error(err))
			continue
		}
		utils.Zlog.Info("Scheduled briefing sent",
			zap.String("slot", slot),
			zap.String("archiveId", res.ArchiveID))
	}
	return due
}

func (r *Runner) triggerSync() {
	jobID, err := r.sync.TriggerSync(r.baseCtx, nil)
	if err != nil {
		utils.Zlog.Warn("Scheduled sync not enqueued", zap.Error(err))
		return
	}
	utils.Zlog.Info("Scheduled sync enqueued", zap.String("jobId", jobID))
}
