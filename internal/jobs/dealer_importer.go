package jobs

import (
	"bytes"
	"context"
	"path"
	"time"

	"dealerdir/internal/caching"
	"dealerdir/internal/metrics"
	"dealerdir/internal/models"
	"dealerdir/internal/repositories"
	"dealerdir/internal/services"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNoImportSource is returned by RunDefault when neither a sheet nor an
// object export is configured.
var ErrNoImportSource = errors.New("no default import source configured")

type ImporterOptions struct {
	// HeaderRows leading rows are dropped before parsing.
	HeaderRows int
	LockTTL    time.Duration
	// ArchiveBucket receives a copy of every uploaded file when an object
	// store is available. Empty disables archiving.
	ArchiveBucket string
}

type DealerImporter struct {
	dealerRepo    repositories.DealerRepository
	tracker       caching.ImportTracker
	metrics       *metrics.Registry
	logger        *zap.Logger
	defaultSource RowSource
	archive       services.ObjectStore
	opts          ImporterOptions
	now           func() time.Time
}

func NewDealerImporter(dealerRepo repositories.DealerRepository, tracker caching.ImportTracker, m *metrics.Registry, logger *zap.Logger, opts ImporterOptions) *DealerImporter {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Minute
	}
	if opts.HeaderRows < 0 {
		opts.HeaderRows = 0
	}
	return &DealerImporter{
		dealerRepo: dealerRepo,
		tracker:    tracker,
		metrics:    m,
		logger:     logger.Named("import"),
		opts:       opts,
		now:        time.Now,
	}
}

// SetDefaultSource sets the source used by RunDefault and the scheduler
func (i *DealerImporter) SetDefaultSource(source RowSource) {
	i.defaultSource = source
}

// SetArchive enables archiving of uploaded files
func (i *DealerImporter) SetArchive(store services.ObjectStore) {
	i.archive = store
}

func (i *DealerImporter) HasDefaultSource() bool {
	return i.defaultSource != nil
}

// RunDefault imports from the configured sheet or object export
func (i *DealerImporter) RunDefault(ctx context.Context) (*models.ImportResult, error) {
	if i.defaultSource == nil {
		return nil, ErrNoImportSource
	}
	return i.Run(ctx, i.defaultSource)
}

// RunUpload archives an uploaded CSV when possible and imports it
func (i *DealerImporter) RunUpload(ctx context.Context, filename string, data []byte) (*models.ImportResult, error) {
	if i.archive != nil && i.opts.ArchiveBucket != "" {
		key := path.Join("uploads", i.now().UTC().Format("20060102T150405Z")+"-"+path.Base(filename))
		if err := i.archive.Put(ctx, i.opts.ArchiveBucket, key, bytes.NewReader(data), int64(len(data)), "text/csv"); err != nil {
			i.logger.Warn("failed to archive uploaded import file", zap.String("object", key), zap.Error(err))
		}
	}
	return i.Run(ctx, NewCSVSource(filename, bytes.NewReader(data)))
}

// Run reads every row from source and writes the batch in one transaction.
// The result is returned even when the run fails so callers can report it.
func (i *DealerImporter) Run(ctx context.Context, source RowSource) (*models.ImportResult, error) {
	runID := uuid.New()
	if err := i.tracker.Acquire(ctx, runID, i.opts.LockTTL); err != nil {
		if errors.Is(err, caching.ErrImportInProgress) {
			i.metrics.ImportRunsTotal.WithLabelValues(source.Kind(), "busy").Inc()
		}
		return nil, err
	}
	defer func() {
		if err := i.tracker.Release(context.WithoutCancel(ctx), runID); err != nil {
			i.logger.Warn("failed to release import lock", zap.Stringer("run_id", runID), zap.Error(err))
		}
	}()

	result := &models.ImportResult{
		RunID:     runID,
		Source:    source.Name(),
		StartedAt: i.now(),
	}
	log := i.logger.With(zap.Stringer("run_id", runID), zap.String("source", result.Source))
	log.Info("dealer import started")

	written, skipped, err := i.importRows(ctx, source)
	result.RowsProcessed = written
	result.Skipped = skipped
	result.FinishedAt = i.now()
	if err != nil {
		result.Error = err.Error()
	}

	if saveErr := i.tracker.SaveResult(context.WithoutCancel(ctx), result); saveErr != nil {
		log.Warn("failed to record import result", zap.Error(saveErr))
	}

	elapsed := result.FinishedAt.Sub(result.StartedAt)
	i.metrics.ImportDuration.WithLabelValues(source.Kind()).Observe(elapsed.Seconds())
	i.metrics.ImportRowsSkipped.Add(float64(skipped))
	if err != nil {
		i.metrics.ImportRunsTotal.WithLabelValues(source.Kind(), "failed").Inc()
		log.Error("dealer import failed", zap.Int("skipped", skipped), zap.Duration("elapsed", elapsed), zap.Error(err))
		return result, err
	}

	i.metrics.ImportRunsTotal.WithLabelValues(source.Kind(), "success").Inc()
	i.metrics.ImportRowsProcessed.Add(float64(written))
	log.Info("dealer import finished",
		zap.Int("rows_processed", written),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

func (i *DealerImporter) importRows(ctx context.Context, source RowSource) (int, int, error) {
	rows, err := source.Rows(ctx)
	if err != nil {
		return 0, 0, err
	}

	if len(rows) <= i.opts.HeaderRows {
		rows = nil
	} else {
		rows = rows[i.opts.HeaderRows:]
	}

	batch := make([]models.ImportRow, 0, len(rows))
	skipped := 0
	for _, cells := range rows {
		row := models.ParseImportRow(cells)
		if row.DealerNumber == "" {
			skipped++
			continue
		}
		batch = append(batch, row)
	}

	written, err := i.dealerRepo.ImportBatch(ctx, batch)
	if err != nil {
		// The batch is rolled back as a whole, so nothing was written.
		return 0, skipped, err
	}
	return written, skipped, nil
}
