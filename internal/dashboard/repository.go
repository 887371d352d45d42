package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryCount is one slice of the linen inventory pie.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ActivityCount aggregates linen log entries per day and activity.
type ActivityCount struct {
	Day      time.Time
	Activity string
	Count    int
}

// MonthCount aggregates requisitions per calendar month.
type MonthCount struct {
	Month time.Time
	Count int
}

// PGRepository runs the dashboard aggregates against Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository wires the repository to a connection pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CountLinens(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM linens WHERE is_active`).Scan(&n)
	return n, err
}

func (r *PGRepository) CountPendingRequests(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM requests WHERE current_status = 'PENDING'`).Scan(&n)
	return n, err
}

func (r *PGRepository) CountApprovedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM requests
		WHERE current_status = 'APPROVED' AND updated_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *PGRepository) CountDamagedItems(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM request_items WHERE damage_reason_id IS NOT NULL`).Scan(&n)
	return n, err
}

// CategoryCounts groups the active inventory by product category.
func (r *PGRepository) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(c.category_name, 'Uncategorized'), COUNT(*)
		FROM linens l
		JOIN products p ON p.product_id = l.product_id
		LEFT JOIN categories c ON c.category_id = p.category_id
		WHERE l.is_active
		GROUP BY 1
		ORDER BY 2 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Value); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// DailyActivity counts RFID scan events per day since the given instant.
func (r *PGRepository) DailyActivity(ctx context.Context, since time.Time) ([]ActivityCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', recorded_at), activity_type, COUNT(*)
		FROM linen_logs
		WHERE recorded_at >= $1
		GROUP BY 1, 2
		ORDER BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityCount
	for rows.Next() {
		var ac ActivityCount
		if err := rows.Scan(&ac.Day, &ac.Activity, &ac.Count); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}

// MonthlyRequests counts requisitions per month since the given instant.
func (r *PGRepository) MonthlyRequests(ctx context.Context, since time.Time) ([]MonthCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', created_at), COUNT(*)
		FROM requests
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// MonthlyDamaged counts damage reported line items per month.
func (r *PGRepository) MonthlyDamaged(ctx context.Context, since time.Time) ([]MonthCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', r.created_at), COUNT(*)
		FROM request_items ri
		JOIN requests r ON r.request_id = ri.request_id
		WHERE ri.damage_reason_id IS NOT NULL AND r.created_at >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}
