package enrich

import (
	"time"

	"github.com/sells-group/osint-enrich/internal/model"
)

// Summarize derives the batch report from a completed result set.
func Summarize(jobID string, params model.JobParams, results []model.EnrichmentResult, elapsed time.Duration) model.JobReport {
	report := model.JobReport{
		JobID:         jobID,
		Params:        params,
		TotalLeads:    len(results),
		TotalDuration: elapsed,
		Timestamp:     time.Now().UTC(),
		Results:       results,
	}

	var scoreSum int
	for _, res := range results {
		if res.Status == model.ResultStatusCompleted {
			report.SuccessfulLeads++
			scoreSum += res.Score
		} else {
			report.FailedLeads++
		}
	}

	if report.TotalLeads > 0 {
		report.SuccessRate = float64(report.SuccessfulLeads) / float64(report.TotalLeads) * 100
		report.AvgPerLead = elapsed / time.Duration(report.TotalLeads)
	}
	if report.SuccessfulLeads > 0 {
		report.AverageScore = float64(scoreSum) / float64(report.SuccessfulLeads)
	}

	return report
}
