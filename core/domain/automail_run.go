package domain

import "time"

// RunKind names the entry point that triggered an orchestration run.
type RunKind string

const (
	RunBatch     RunKind = "batch"
	RunSingle    RunKind = "single"
	RunWebhook   RunKind = "webhook"
	RunAnalytics RunKind = "analytics"
)

// ProcessingRun records one orchestration pass for auditing.
type ProcessingRun struct {
	ID           string        `json:"id"`
	Kind         RunKind       `json:"kind"`
	Processed    int           `json:"processed"`
	Errored      int           `json:"errored"`
	ServicesUsed []string      `json:"services_used"`
	Duration     time.Duration `json:"duration_ms"`
	StartedAt    time.Time     `json:"started_at"`
}

// AnalyticsSnapshot is a persisted Analytics document, kept for a
// bounded retention window.
type AnalyticsSnapshot struct {
	ID        string    `json:"id" bson:"_id"`
	Processed int       `json:"processed" bson:"processed"`
	Analytics Analytics `json:"analytics" bson:"analytics"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
