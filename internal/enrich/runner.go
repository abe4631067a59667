package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/osint-enrich/internal/model"
)

// LeadEnricher is the per-lead orchestration consumed by the runner.
type LeadEnricher interface {
	Enrich(ctx context.Context, lead model.Lead) model.EnrichmentResult
}

// Runner processes leads through a bounded worker pool. Results are
// collected in completion order, not submission order.
type Runner struct {
	enricher LeadEnricher
}

// NewRunner creates a Runner over the given orchestrator.
func NewRunner(enricher LeadEnricher) *Runner {
	return &Runner{enricher: enricher}
}

// Run enriches every lead under a pool of the given size and returns
// one result per lead. The concurrency bound is per batch, not per
// Runner, so each job picks its own. The batch is rejected before any
// worker starts when it cannot be scheduled at all; after that nothing
// is fatal: a panicking orchestration yields a synthetic error result
// for that lead only, and cancellation turns the not-yet-started
// remainder into synthetic error results so no lead vanishes. progress
// may be nil when no poller cares.
func (r *Runner) Run(ctx context.Context, leads []model.Lead, workers int, progress *Progress) ([]model.EnrichmentResult, error) {
	if len(leads) == 0 {
		return nil, eris.New("runner: no leads to process")
	}
	if workers <= 0 {
		return nil, eris.Errorf("runner: worker count must be positive, got %d", workers)
	}
	if progress == nil {
		progress = NewProgress(len(leads))
	}

	zap.L().Info("runner: starting batch",
		zap.Int("leads", len(leads)),
		zap.Int("workers", workers),
	)

	results := make(chan model.EnrichmentResult)

	var g errgroup.Group
	g.SetLimit(workers)
	go func() {
		for _, lead := range leads {
			lead := lead
			g.Go(func() error {
				if ctx.Err() != nil {
					results <- syntheticError(lead, "batch canceled: "+ctx.Err().Error())
					return nil
				}
				results <- r.enrichIsolated(ctx, lead)
				return nil
			})
		}
		g.Wait() //nolint:errcheck // workers never return errors
		close(results)
	}()

	collected := make([]model.EnrichmentResult, 0, len(leads))
	for res := range results {
		snap := progress.Record(res.Status != model.ResultStatusError)
		collected = append(collected, res)
		zap.L().Info("runner: lead processed",
			zap.Int64("lead_id", res.LeadID),
			zap.Int("score", res.Score),
			zap.String("status", string(res.Status)),
			zap.Int("processed", snap.Processed),
			zap.Int("total", snap.Total),
			zap.Float64("percentage", snap.Percentage),
		)
	}

	zap.L().Info("runner: batch complete",
		zap.Int("processed", len(collected)),
	)

	return collected, nil
}

// enrichIsolated shields the batch from bugs in the orchestrator itself:
// a panic becomes a synthetic error result for that lead alone.
func (r *Runner) enrichIsolated(ctx context.Context, lead model.Lead) (res model.EnrichmentResult) {
	defer func() {
		if p := recover(); p != nil {
			zap.L().Error("runner: orchestration panicked",
				zap.Int64("lead_id", lead.ID),
				zap.Any("panic", p),
			)
			res = syntheticError(lead, fmt.Sprintf("orchestration panic: %v", p))
		}
	}()
	return r.enricher.Enrich(ctx, lead)
}

func syntheticError(lead model.Lead, msg string) model.EnrichmentResult {
	return model.EnrichmentResult{
		LeadID:    lead.ID,
		Email:     lead.Email,
		Company:   lead.Company,
		Country:   lead.Country,
		Status:    model.ResultStatusError,
		Error:     msg,
		Timestamp: time.Now().UTC(),
	}
}
