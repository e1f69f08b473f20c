package background

import (
	"context"
	"sync"
	"time"

	"dealerdir/internal/caching"
	"dealerdir/internal/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Importer is the part of the dealer importer the scheduler drives
type Importer interface {
	RunDefault(ctx context.Context) (*models.ImportResult, error)
}

type SchedulerOptions struct {
	ImportInterval time.Duration
	// ImportOnStart runs the first import as soon as the scheduler starts.
	ImportOnStart bool
}

// JobScheduler runs the periodic dealer import
type JobScheduler struct {
	scheduler gocron.Scheduler
	importer  Importer
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the import job. A zero interval leaves the
// scheduler empty, which is valid: imports then only run on request.
func NewJobScheduler(importer Importer, logger *zap.Logger, opts SchedulerOptions) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}

	js := &JobScheduler{
		scheduler: scheduler,
		importer:  importer,
		logger:    logger.Named("scheduler"),
		jobs:      make(map[string]gocron.Job),
	}

	if opts.ImportInterval > 0 {
		if err := js.registerImportJob(opts); err != nil {
			_ = scheduler.Shutdown()
			return nil, err
		}
	}
	js.logger.Info("registered background jobs", zap.Int("count", len(js.jobs)))
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// Jobs returns the registered job names
func (js *JobScheduler) Jobs() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerImportJob(opts SchedulerOptions) error {
	jobOpts := []gocron.JobOption{
		gocron.WithName("dealer-import"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if opts.ImportOnStart {
		jobOpts = append(jobOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(opts.ImportInterval),
		gocron.NewTask(js.runImport),
		jobOpts...,
	)
	if err != nil {
		return errors.Wrap(err, "create dealer import job")
	}

	js.mu.Lock()
	js.jobs["dealer-import"] = job
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) runImport() {
	ctx := context.Background()
	result, err := js.importer.RunDefault(ctx)
	switch {
	case errors.Is(err, caching.ErrImportInProgress):
		js.logger.Info("scheduled import skipped, another import is running")
	case err != nil:
		js.logger.Error("scheduled dealer import failed", zap.Error(err))
	default:
		js.logger.Info("scheduled dealer import completed",
			zap.Stringer("run_id", result.RunID),
			zap.Int("rows_processed", result.RowsProcessed))
	}
}
