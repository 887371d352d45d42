package linens

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linentrack/linentrack/internal/platform/db"
	"github.com/linentrack/linentrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for linens.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert registers a new linen. A duplicate rfid tag surfaces as
// ErrDuplicate via the unique index.
func (r *Repository) Insert(ctx context.Context, linen Linen) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO linens (rfid_code, product_id, vendor_id, hospital_id,
		                    status, is_active, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING linen_id`,
		linen.RFIDTag, linen.ProductID, linen.VendorID, linen.HospitalID,
		linen.Status, linen.IsActive, linen.RegisteredAt, linen.UpdatedAt).
		Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// Get returns the linen plus its product display name.
func (r *Repository) Get(ctx context.Context, id int64) (Linen, string, error) {
	var linen Linen
	var productName string
	err := r.pool.QueryRow(ctx, `
		SELECT l.linen_id, l.rfid_code, l.product_id, l.vendor_id, l.hospital_id,
		       l.status, l.is_active, l.registered_at, l.updated_at,
		       COALESCE(p.product_name, '')
		FROM linens l
		LEFT JOIN products p ON p.product_id = l.product_id
		WHERE l.linen_id = $1`, id).
		Scan(&linen.ID, &linen.RFIDTag, &linen.ProductID, &linen.VendorID,
			&linen.HospitalID, &linen.Status, &linen.IsActive,
			&linen.RegisteredAt, &linen.UpdatedAt, &productName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Linen{}, "", ErrNotFound
		}
		return Linen{}, "", err
	}
	return linen, productName, nil
}

// FindByRFID returns the linen carrying the given tag.
func (r *Repository) FindByRFID(ctx context.Context, tag string) (Linen, error) {
	var linen Linen
	err := r.pool.QueryRow(ctx, `
		SELECT linen_id, rfid_code, product_id, vendor_id, hospital_id,
		       status, is_active, registered_at, updated_at
		FROM linens
		WHERE rfid_code = $1`, tag).
		Scan(&linen.ID, &linen.RFIDTag, &linen.ProductID, &linen.VendorID,
			&linen.HospitalID, &linen.Status, &linen.IsActive,
			&linen.RegisteredAt, &linen.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Linen{}, ErrNotFound
		}
		return Linen{}, err
	}
	return linen, nil
}

// ListActive returns in-circulation linens, newest registration first.
func (r *Repository) ListActive(ctx context.Context) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.linen_id, l.rfid_code, l.product_id,
		       COALESCE(p.product_name, ''), COALESCE(c.category_name, ''),
		       COALESCE(h.hospital_name, ''), l.status, l.registered_at, l.updated_at
		FROM linens l
		LEFT JOIN products p ON p.product_id = l.product_id
		LEFT JOIN categories c ON c.category_id = p.category_id
		LEFT JOIN hospitals h ON h.hospital_id = l.hospital_id
		WHERE l.is_active
		ORDER BY l.registered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []Detail{}
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.RFIDTag, &d.ProductID,
			&d.ProductName, &d.CategoryName, &d.HospitalName,
			&d.Status, &d.RegisteredAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// Discard soft-deletes the linen carrying the tag and stamps the damage
// reason label as its status.
func (r *Repository) Discard(ctx context.Context, tag, reasonLabel string, at time.Time) error {
	tag2, err := r.pool.Exec(ctx, `
		UPDATE linens SET is_active = FALSE, status = $1, updated_at = $2
		WHERE rfid_code = $3`, reasonLabel, at, tag)
	if err != nil {
		return err
	}
	if tag2.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DiscardHistory returns the latest soft-deleted linens.
func (r *Repository) DiscardHistory(ctx context.Context, limit int) ([]DiscardRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.linen_id, COALESCE(NULLIF(p.product_name, ''), 'RFID: ' || l.rfid_code),
		       l.status, l.updated_at
		FROM linens l
		LEFT JOIN products p ON p.product_id = l.product_id
		WHERE NOT l.is_active AND l.status <> $1
		ORDER BY l.updated_at DESC
		LIMIT $2`, StatusAvailable, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []DiscardRecord{}
	for rows.Next() {
		var rec DiscardRecord
		var at time.Time
		if err := rows.Scan(&rec.ID, &rec.Item, &rec.Reason, &at); err != nil {
			return nil, err
		}
		rec.Time = at.Format(feedTimeLayout)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Monitor returns the most recently touched linens regardless of status.
func (r *Repository) Monitor(ctx context.Context, limit int) ([]MonitorEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.rfid_code, COALESCE(NULLIF(p.product_name, ''), 'Unknown'),
		       l.status, l.updated_at
		FROM linens l
		LEFT JOIN products p ON p.product_id = l.product_id
		ORDER BY l.updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []MonitorEntry{}
	for rows.Next() {
		var entry MonitorEntry
		var at time.Time
		if err := rows.Scan(&entry.RFIDTag, &entry.ProductName, &entry.Status, &at); err != nil {
			return nil, err
		}
		entry.Location = locationFor(entry.Status)
		entry.Timestamp = at.Format("15:04:05")
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteWithLog removes the linen permanently. The audit entry is written
// first, inside the same transaction, because the tag and product name are
// unreadable once the row is gone.
func (r *Repository) DeleteWithLog(ctx context.Context, id int64, entry shared.AuditLog) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := shared.RecordTx(ctx, tx, entry); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM linen_logs WHERE linen_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM linens WHERE linen_id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AppendActivity records one movement event and touches the linen so the
// monitor feed surfaces it.
func (r *Repository) AppendActivity(ctx context.Context, log ActivityLog) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO linen_logs (linen_id, reader_id, room_id, activity_type, recorded_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING log_id`,
			log.LinenID, log.ReaderID, log.RoomID, log.Activity, log.RecordedAt).
			Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE linens SET updated_at = $1 WHERE linen_id = $2`,
			log.RecordedAt, log.LinenID)
		return err
	})
	return id, err
}
