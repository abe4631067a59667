package model

import "time"

// JobStatus represents the current state of a batch enrichment job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusError     JobStatus = "error"
)

// JobParams are the caller-supplied knobs for one batch job.
type JobParams struct {
	BatchSize  int `json:"batch_size"`
	MaxWorkers int `json:"max_workers"`
}

// Job is one batch enrichment run as persisted in the store.
type Job struct {
	ID        string     `json:"id"`
	Params    JobParams  `json:"params"`
	Status    JobStatus  `json:"status"`
	Report    *JobReport `json:"report,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// JobReport is the timestamped artifact written once per completed batch.
type JobReport struct {
	JobID           string             `json:"job_id"`
	Params          JobParams          `json:"params"`
	TotalLeads      int                `json:"total_leads"`
	SuccessfulLeads int                `json:"successful_leads"`
	FailedLeads     int                `json:"failed_leads"`
	SuccessRate     float64            `json:"success_rate"`
	AverageScore    float64            `json:"average_score"`
	TotalDuration   time.Duration      `json:"total_processing_time"`
	AvgPerLead      time.Duration      `json:"avg_time_per_lead"`
	Timestamp       time.Time          `json:"timestamp"`
	Results         []EnrichmentResult `json:"results"`
}
