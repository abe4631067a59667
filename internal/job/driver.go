package job

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/enrich"
	"github.com/sells-group/osint-enrich/internal/model"
	"github.com/sells-group/osint-enrich/internal/store"
)

// BatchRunner abstracts the worker pool so the driver can be tested
// without live probes. The worker count comes from the job's params.
type BatchRunner interface {
	Run(ctx context.Context, leads []model.Lead, workers int, progress *enrich.Progress) ([]model.EnrichmentResult, error)
}

// Seeder supplies the leads for one batch.
type Seeder func(n int) []model.Lead

// Driver runs one enrichment job: seed, run, summarize, persist.
type Driver struct {
	store     store.Store
	runner    BatchRunner
	seed      Seeder
	reportDir string
}

// NewDriver wires a Driver. seed may be nil to use the sandbox seeder.
// reportDir may be empty to skip the JSON artifact.
func NewDriver(st store.Store, runner BatchRunner, seed Seeder, reportDir string) *Driver {
	if seed == nil {
		seed = SeedLeads
	}
	return &Driver{store: st, runner: runner, seed: seed, reportDir: reportDir}
}

// Run executes a batch job to completion and returns the report. The
// job row is created up front so pollers can see it while the batch is
// running; on failure its status is set to error before returning.
func (d *Driver) Run(ctx context.Context, params model.JobParams, progress *enrich.Progress) (*model.JobReport, error) {
	jb, err := d.Start(ctx, params)
	if err != nil {
		return nil, err
	}
	return d.Complete(ctx, jb, progress)
}

// Start creates the job row so callers can hand out the id before the
// batch runs.
func (d *Driver) Start(ctx context.Context, params model.JobParams) (*model.Job, error) {
	jb, err := d.store.CreateJob(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "job: create")
	}
	zap.L().Info("job: started",
		zap.String("job_id", jb.ID),
		zap.Int("batch_size", params.BatchSize),
		zap.Int("max_workers", params.MaxWorkers),
	)
	return jb, nil
}

// Complete runs the batch for a started job and persists the report. On
// failure the job row is marked error before returning.
func (d *Driver) Complete(ctx context.Context, jb *model.Job, progress *enrich.Progress) (*model.JobReport, error) {
	report, err := d.runBatch(ctx, jb.ID, jb.Params, progress)
	if err != nil {
		if stErr := d.store.UpdateJobStatus(context.WithoutCancel(ctx), jb.ID, model.JobStatusError); stErr != nil {
			zap.L().Error("job: failed to mark error", zap.String("job_id", jb.ID), zap.Error(stErr))
		}
		return nil, eris.Wrapf(err, "job: run %s", jb.ID)
	}

	zap.L().Info("job: completed",
		zap.String("job_id", jb.ID),
		zap.Int("total", report.TotalLeads),
		zap.Int("successful", report.SuccessfulLeads),
		zap.Float64("avg_score", report.AverageScore),
		zap.Duration("duration", report.TotalDuration),
	)
	return report, nil
}

func (d *Driver) runBatch(ctx context.Context, jobID string, params model.JobParams, progress *enrich.Progress) (*model.JobReport, error) {
	leads := d.seed(params.BatchSize)
	if progress != nil {
		progress.Reset(len(leads))
	}

	start := time.Now()
	results, err := d.runner.Run(ctx, leads, params.MaxWorkers, progress)
	if err != nil {
		return nil, eris.Wrap(err, "batch run")
	}

	summary := enrich.Summarize(jobID, params, results, time.Since(start))
	report := &summary
	if err := d.store.SaveReport(ctx, jobID, report); err != nil {
		return nil, eris.Wrap(err, "save report")
	}

	if d.reportDir != "" {
		if path, err := d.writeArtifact(report); err != nil {
			// The canonical copy is in the store; losing the file copy
			// is not fatal.
			zap.L().Warn("job: report artifact not written", zap.Error(err))
		} else {
			zap.L().Info("job: report artifact written", zap.String("path", path))
		}
	}
	return report, nil
}

// writeArtifact dumps the report as a timestamped JSON file.
func (d *Driver) writeArtifact(report *model.JobReport) (string, error) {
	if err := os.MkdirAll(d.reportDir, 0o755); err != nil {
		return "", eris.Wrap(err, "create report dir")
	}

	name := fmt.Sprintf("enrichment_report_%s.json", report.Timestamp.Format("20060102_150405"))
	path := filepath.Join(d.reportDir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "write report")
	}
	return path, nil
}
