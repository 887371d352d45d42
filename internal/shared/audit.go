package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit action types recorded in system_logs.
const (
	ActionCreateRequest = "CREATE_REQUEST"
	ActionUpdateStatus  = "UPDATE_STATUS"
	ActionDeleteRequest = "DELETE_REQUEST"
	ActionRegisterLinen = "REGISTER_LINEN"
	ActionDiscardLinen  = "DISCARD_LINEN"
	ActionDeleteLinen   = "DELETE_LINEN"
	ActionLogin         = "LOGIN"
	ActionResetPassword = "RESET_PASSWORD"
)

// AuditLog represents a record stored in system_logs. Entries are append-only
// and never updated or deleted by the application.
type AuditLog struct {
	ID          int64
	ActorID     *int64
	Action      string
	Description string
	CreatedAt   time.Time
}

// AuditLogger writes records into system_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

const insertAuditSQL = `INSERT INTO system_logs (user_id, action_type, description, created_at) VALUES ($1, $2, $3, COALESCE(NULLIF($4::timestamptz, '0001-01-01'::timestamptz), NOW()))`

// Record persists the log entry using the shared pool.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" {
		return errors.New("audit log requires an action type")
	}
	_, err := l.pool.Exec(ctx, insertAuditSQL, log.ActorID, log.Action, log.Description, log.CreatedAt)
	return err
}

// RecordTx persists the log entry inside an open transaction, so the entry
// commits or rolls back together with the mutation it describes.
func RecordTx(ctx context.Context, tx pgx.Tx, log AuditLog) error {
	if log.Action == "" {
		return errors.New("audit log requires an action type")
	}
	_, err := tx.Exec(ctx, insertAuditSQL, log.ActorID, log.Action, log.Description, log.CreatedAt)
	return err
}

// RecentByAction returns the newest entries for one action type.
func (l *AuditLogger) RecentByAction(ctx context.Context, action string, limit int) ([]AuditLog, error) {
	if l == nil {
		return nil, errors.New("audit logger not initialised")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.pool.Query(ctx, `SELECT log_id, user_id, action_type, COALESCE(description,''), created_at FROM system_logs WHERE action_type=$1 ORDER BY created_at DESC LIMIT $2`, action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []AuditLog
	for rows.Next() {
		var log AuditLog
		if err := rows.Scan(&log.ID, &log.ActorID, &log.Action, &log.Description, &log.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
