// Package api registers every feature router on the /api group.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/api/appconfig"
	"github.com/gobapps/gob-api/internal/api/briefings"
	"github.com/gobapps/gob-api/internal/api/briefingschedule"
	"github.com/gobapps/gob-api/internal/api/companydata"
	"github.com/gobapps/gob-api/internal/api/dailycache"
	"github.com/gobapps/gob-api/internal/api/emaildesign"
	"github.com/gobapps/gob-api/internal/api/emaillogs"
	"github.com/gobapps/gob-api/internal/api/emma"
	"github.com/gobapps/gob-api/internal/api/health"
	"github.com/gobapps/gob-api/internal/api/marketdata"
	"github.com/gobapps/gob-api/internal/api/tickers"
	"github.com/gobapps/gob-api/internal/api/tickersync"
	"github.com/gobapps/gob-api/internal/briefing"
	"github.com/gobapps/gob-api/internal/config"
	"github.com/gobapps/gob-api/internal/fmp"
	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/loaders"
	"github.com/gobapps/gob-api/internal/notify"
	"github.com/gobapps/gob-api/internal/sms"
)

// Dependencies are the process-wide clients built in main. Analyst is nil
// when no Gemini key is configured.
type Dependencies struct {
	DB       *loaders.PostgresClient
	FMP      *fmp.Client
	Research *llm.Client
	Writer   *llm.Client
	Analyst  sms.Analyst
	Mailer   notify.Sender
	EmailLog *notify.LogBuffer
}

// Registered exposes the pieces the scheduler and shutdown path need.
type Registered struct {
	Pipeline  *briefing.Pipeline
	Schedules *briefingschedule.Service
	Sync      *tickersync.Service
	Workers   *tickersync.WorkerPool
}

func RegisterRoutes(engine *gin.Engine, deps Dependencies, cfg *config.Config) *Registered {
	health.RegisterRoutes(engine, deps.DB, cfg.ServiceName)

	router := engine.Group("/api")

	marketdata.RegisterRoutes(router, deps.DB)
	dailycache.RegisterRoutes(router, deps.DB)
	companydata.RegisterRoutes(router, deps.FMP, cfg)
	syncService, workers := tickersync.RegisterRoutes(router, deps.DB, deps.FMP, deps.DB, cfg)
	tickers.RegisterRoutes(router, deps.DB, cfg.AdminToken)

	configService := appconfig.RegisterRoutes(router, deps.DB)
	designs := emaildesign.RegisterRoutes(router, configService)
	schedules := briefingschedule.RegisterRoutes(router, configService)

	pipeline := briefing.NewPipeline(briefing.Deps{
		Research:  deps.Research,
		Writer:    deps.Writer,
		Mailer:    deps.Mailer,
		Archive:   deps.DB,
		Designs:   designs,
		Tickers:   deps.DB,
		DefaultTo: cfg.ResendTo,
		From:      cfg.ResendFrom,
	})
	briefings.RegisterRoutes(router, pipeline)
	emaillogs.RegisterRoutes(router, deps.EmailLog)

	var research sms.Researcher
	if deps.Research.Configured() {
		research = deps.Research
	}
	emma.RegisterRoutes(router, sms.NewOrchestrator(deps.DB, research, deps.Analyst))

	return &Registered{
		Pipeline:  pipeline,
		Schedules: schedules,
		Sync:      syncService,
		Workers:   workers,
	}
}
