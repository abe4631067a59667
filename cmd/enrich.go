package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/osint-enrich/internal/enrich"
	"github.com/sells-group/osint-enrich/internal/job"
	"github.com/sells-group/osint-enrich/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one enrichment batch",
	Long:  "Seeds sandbox leads, enriches them through the probe pool, and persists the report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, _ := cmd.Flags().GetInt("leads")
		workers, _ := cmd.Flags().GetInt("workers")
		reportDir, _ := cmd.Flags().GetString("report-dir")

		if leads == 0 {
			leads = cfg.Processing.BatchSize
		}
		if workers == 0 {
			workers = cfg.Processing.MaxWorkers
		}
		if reportDir == "" {
			reportDir = cfg.Report.Dir
		}

		runner := enrich.NewRunner(buildEnricher(cfg))
		driver := job.NewDriver(st, runner, nil, reportDir)

		params := model.JobParams{BatchSize: leads, MaxWorkers: workers}
		report, err := driver.Run(ctx, params, nil)
		if err != nil {
			return err
		}

		formatReport(report)
		return nil
	},
}

func init() {
	enrichCmd.Flags().Int("leads", 0, "number of leads to enrich (default from config)")
	enrichCmd.Flags().Int("workers", 0, "worker pool size (default from config)")
	enrichCmd.Flags().String("report-dir", "", "directory for the JSON report artifact (default from config)")
	rootCmd.AddCommand(enrichCmd)
}

func formatReport(r *model.JobReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Job:\t%s\n", r.JobID)
	_, _ = fmt.Fprintf(w, "Leads:\t%d\n", r.TotalLeads)
	_, _ = fmt.Fprintf(w, "Successful:\t%d\n", r.SuccessfulLeads)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", r.FailedLeads)
	_, _ = fmt.Fprintf(w, "Success rate:\t%.1f%%\n", r.SuccessRate)
	_, _ = fmt.Fprintf(w, "Average score:\t%.1f\n", r.AverageScore)
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", r.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Per lead:\t%s\n", r.AvgPerLead.Round(time.Millisecond))
	_ = w.Flush()
}
