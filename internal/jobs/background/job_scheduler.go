package background

import (
	"context"
	"errors"
	"sync"
	"time"

	"depot/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

var ErrUnknownJob = errors.New("unknown job")

// JobScheduler owns the periodic background jobs: low stock alerts and the
// ledger audit sweep.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alertSvc  *jobs.LowStockAlertService
	auditSvc  *jobs.LedgerAuditService
	jobs      map[string]gocron.Job
	logger    zerolog.Logger
	mu        sync.RWMutex
}

type Intervals struct {
	LowStockAlerts time.Duration
	LedgerAudit    time.Duration
}

func NewJobScheduler(alertSvc *jobs.LowStockAlertService, auditSvc *jobs.LedgerAuditService, intervals Intervals, logger zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alertSvc:  alertSvc,
		auditSvc:  auditSvc,
		jobs:      make(map[string]gocron.Job),
		logger:    logger,
	}

	if intervals.LowStockAlerts <= 0 {
		intervals.LowStockAlerts = 30 * time.Minute
	}
	if intervals.LedgerAudit <= 0 {
		intervals.LedgerAudit = time.Hour
	}

	js.registerJobs(intervals)
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(intervals Intervals) {
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(intervals.LowStockAlerts),
		gocron.NewTask(js.alertSvc.Run, context.Background()),
		gocron.WithName("low-stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error().Err(err).Msg("failed to register low stock alerts job")
	} else {
		js.jobs["low-stock-alerts"] = alertsJob
	}

	auditJob, err := js.scheduler.NewJob(
		gocron.DurationJob(intervals.LedgerAudit),
		gocron.NewTask(js.auditSvc.Run, context.Background()),
		gocron.WithName("ledger-audit-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error().Err(err).Msg("failed to register ledger audit job")
	} else {
		js.jobs["ledger-audit-sweep"] = auditJob
	}
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	return job.RunNow()
}

// Status reports the registered job names for the health endpoint.
func (js *JobScheduler) Status() map[string]any {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return map[string]any{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
