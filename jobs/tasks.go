package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup precomputes the dashboard aggregates.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskLogRetention prunes aged audit and scan logs.
	TaskLogRetention = "logs:retention"
)

// DashboardWarmupPayload configures a warmup run.
type DashboardWarmupPayload struct {
	// Invalidate bumps the cache version before recomputing, so the run
	// refreshes aggregates instead of re-reading stale entries.
	Invalidate bool `json:"invalidate"`
}

// NewDashboardWarmupTask constructs an Asynq task for cache warmup.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// LogRetentionPayload configures a retention sweep.
type LogRetentionPayload struct {
	// RetentionHours overrides the configured retention window when positive.
	RetentionHours int `json:"retention_hours,omitempty"`
}

// NewLogRetentionTask constructs an Asynq task for the retention sweep.
func NewLogRetentionTask(payload LogRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLogRetention, data), nil
}
