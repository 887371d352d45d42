package requisitions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linentrack/linentrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for requisitions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Get returns the requisition header and lines.
func (r *Repository) Get(ctx context.Context, id int64) (Requisition, error) {
	var req Requisition
	err := r.pool.QueryRow(ctx, `
		SELECT request_id, request_code, request_type, requested_by_user_id,
		       target_ward_id, current_status, created_at, updated_at
		FROM requests
		WHERE request_id = $1`, id).
		Scan(&req.ID, &req.Code, &req.Kind, &req.RequestedBy,
			&req.TargetWardID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Requisition{}, ErrNotFound
		}
		return Requisition{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT item_id, request_id, product_id, quantity_requested, damage_reason_id
		FROM request_items
		WHERE request_id = $1
		ORDER BY item_id`, id)
	if err != nil {
		return Requisition{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line LineItem
		if err := rows.Scan(&line.ID, &line.RequisitionID, &line.ProductID,
			&line.Quantity, &line.DamageReasonID); err != nil {
			return Requisition{}, err
		}
		req.Items = append(req.Items, line)
	}
	return req, rows.Err()
}

// CountByCodePrefix counts documents whose code starts with prefix. Feeds the
// daily sequence number.
func (r *Repository) CountByCodePrefix(ctx context.Context, prefix string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE request_code LIKE $1 || '%'`, prefix).
		Scan(&count)
	return count, err
}

// ListDetails returns every requisition joined with display names, newest
// first. Lines are fetched in one pass and grouped in memory.
func (r *Repository) ListDetails(ctx context.Context) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.request_id, r.request_code, r.request_type, r.current_status,
		       r.requested_by_user_id, COALESCE(u.full_name, ''),
		       r.target_ward_id, COALESCE(w.ward_name, ''),
		       r.created_at, r.updated_at
		FROM requests r
		LEFT JOIN users u ON u.user_id = r.requested_by_user_id
		LEFT JOIN wards w ON w.ward_id = r.target_ward_id
		ORDER BY r.created_at DESC, r.request_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []Detail{}
	index := map[int64]int{}
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.Code, &d.Kind, &d.Status,
			&d.RequestedBy.ID, &d.RequestedBy.Name,
			&d.TargetWard.ID, &d.TargetWard.Name,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.StatusLabel = d.Status.Label()
		d.Items = []ItemDetail{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.pool.Query(ctx, itemDetailQuery)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		reqID, item, err := scanItemDetail(itemRows)
		if err != nil {
			return nil, err
		}
		if pos, ok := index[reqID]; ok {
			details[pos].Items = append(details[pos].Items, item)
			details[pos].TotalQty += item.Quantity
		}
	}
	return details, itemRows.Err()
}

// GetDetail returns one requisition joined with display names.
func (r *Repository) GetDetail(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `
		SELECT r.request_id, r.request_code, r.request_type, r.current_status,
		       r.requested_by_user_id, COALESCE(u.full_name, ''),
		       r.target_ward_id, COALESCE(w.ward_name, ''),
		       r.created_at, r.updated_at
		FROM requests r
		LEFT JOIN users u ON u.user_id = r.requested_by_user_id
		LEFT JOIN wards w ON w.ward_id = r.target_ward_id
		WHERE r.request_id = $1`, id).
		Scan(&d.ID, &d.Code, &d.Kind, &d.Status,
			&d.RequestedBy.ID, &d.RequestedBy.Name,
			&d.TargetWard.ID, &d.TargetWard.Name,
			&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	d.StatusLabel = d.Status.Label()
	d.Items = []ItemDetail{}

	rows, err := r.pool.Query(ctx, itemDetailQuery+` WHERE i.request_id = $1`, id)
	if err != nil {
		return Detail{}, err
	}
	defer rows.Close()
	for rows.Next() {
		_, item, err := scanItemDetail(rows)
		if err != nil {
			return Detail{}, err
		}
		d.Items = append(d.Items, item)
		d.TotalQty += item.Quantity
	}
	return d, rows.Err()
}

const itemDetailQuery = `
	SELECT i.request_id, i.item_id, i.product_id,
	       COALESCE(p.product_name, ''), COALESCE(c.category_name, ''),
	       i.quantity_requested, i.damage_reason_id, COALESCE(dr.reason_name, '')
	FROM request_items i
	LEFT JOIN products p ON p.product_id = i.product_id
	LEFT JOIN categories c ON c.category_id = p.category_id
	LEFT JOIN damage_reasons dr ON dr.damage_reason_id = i.damage_reason_id`

func scanItemDetail(rows pgx.Rows) (int64, ItemDetail, error) {
	var reqID int64
	var item ItemDetail
	err := rows.Scan(&reqID, &item.ID, &item.ProductID,
		&item.ProductName, &item.CategoryName,
		&item.Quantity, &item.DamageReasonID, &item.DamageReason)
	return reqID, item, err
}

// Transactional writes

func (t *txRepo) Insert(ctx context.Context, req Requisition) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO requests (request_code, request_type, requested_by_user_id,
		                      target_ward_id, current_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING request_id`,
		req.Code, req.Kind, req.RequestedBy, req.TargetWardID,
		req.Status, req.CreatedAt, req.UpdatedAt).
		Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, errCodeTaken
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepo) InsertItem(ctx context.Context, item LineItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO request_items (request_id, product_id, quantity_requested, damage_reason_id)
		VALUES ($1, $2, $3, $4)
		RETURNING item_id`,
		item.RequisitionID, item.ProductID, item.Quantity, item.DamageReasonID).
		Scan(&id)
	return id, err
}

func (t *txRepo) UpdateStatus(ctx context.Context, id int64, status Status, updatedAt, seen time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE requests SET current_status = $1, updated_at = $2
		WHERE request_id = $3 AND updated_at = $4`,
		status, updatedAt, id, seen)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	if err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE request_id = $1)`, id).
		Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (t *txRepo) Delete(ctx context.Context, id int64) error {
	if _, err := t.tx.Exec(ctx,
		`DELETE FROM request_items WHERE request_id = $1`, id); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM requests WHERE request_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) AppendAudit(ctx context.Context, entry shared.AuditLog) error {
	return shared.RecordTx(ctx, t.tx, entry)
}
