package domain

import "time"

// RunSummary describes one completed pipeline run.
type RunSummary struct {
	RunID          string             `json:"run_id"`
	Dir            string             `json:"dir"`
	Rows           int                `json:"rows"`
	TrainRows      int                `json:"train_rows"`
	TestRows       int                `json:"test_rows"`
	Metrics        map[string]Metrics `json:"metrics"`
	Uploaded       []string           `json:"uploaded,omitempty"`
	ArtifactErrors int                `json:"artifact_errors"`
	StartedAt      time.Time          `json:"started_at"`
	CompletedAt    time.Time          `json:"completed_at"`
}
