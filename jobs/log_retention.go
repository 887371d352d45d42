package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LogRetentionJob prunes audit entries and RFID scan logs that have aged out
// of the configured retention window.
type LogRetentionJob struct {
	Pool      *pgxpool.Pool
	Logger    *slog.Logger
	Metrics   *Metrics
	Retention time.Duration
	clock     func() time.Time
}

// NewLogRetentionJob wires dependencies for the retention handler.
func NewLogRetentionJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *Metrics, retention time.Duration) *LogRetentionJob {
	return &LogRetentionJob{
		Pool:      pool,
		Logger:    logger,
		Metrics:   metrics,
		Retention: retention,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes retention sweep tasks.
func (j *LogRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("log retention: handler not configured")
	}
	var payload LogRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	retention := j.Retention
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}
	if retention <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLogRetention)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.now().Add(-retention)
	logger := j.logger().With(slog.Time("cutoff", cutoff))

	audit, err := j.Pool.Exec(ctx, `DELETE FROM system_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("prune system logs", slog.Any("error", err))
		return resultErr
	}
	scans, err := j.Pool.Exec(ctx, `DELETE FROM linen_logs WHERE recorded_at < $1`, cutoff)
	if err != nil {
		resultErr = err
		logger.Error("prune linen logs", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed retention sweep",
		slog.Int64("system_logs", audit.RowsAffected()),
		slog.Int64("linen_logs", scans.RowsAffected()))
	return resultErr
}

func (j *LogRetentionJob) metrics() *Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LogRetentionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLogRetention))
	}
	return slog.Default().With(slog.String("job", TaskLogRetention))
}

func (j *LogRetentionJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
