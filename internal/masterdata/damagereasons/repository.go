package damagereasons

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linentrack/linentrack/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Reason, int, error)
	Get(ctx context.Context, id int64) (Reason, error)
	Create(ctx context.Context, reason Reason) (Reason, error)
	Update(ctx context.Context, id int64, reason Reason) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Reason, int, error) {
	query := `SELECT damage_reason_id, reason_name FROM damage_reasons WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM damage_reasons WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND reason_name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if filters.SortDir == shared.SortDesc {
		dir = "DESC"
	}
	query += ` ORDER BY reason_name ` + dir
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reasons []Reason
	for rows.Next() {
		var reason Reason
		if err := rows.Scan(&reason.ID, &reason.Name); err != nil {
			return nil, 0, err
		}
		reasons = append(reasons, reason)
	}
	return reasons, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Reason, error) {
	var reason Reason
	err := r.pool.QueryRow(ctx,
		`SELECT damage_reason_id, reason_name FROM damage_reasons WHERE damage_reason_id = $1`, id).
		Scan(&reason.ID, &reason.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reason{}, shared.ErrNotFound
		}
		return Reason{}, err
	}
	return reason, nil
}

func (r *repository) Create(ctx context.Context, reason Reason) (Reason, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO damage_reasons (reason_name) VALUES ($1) RETURNING damage_reason_id`,
		reason.Name).
		Scan(&reason.ID)
	if err != nil {
		return Reason{}, err
	}
	return reason, nil
}

func (r *repository) Update(ctx context.Context, id int64, reason Reason) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE damage_reasons SET reason_name = $1 WHERE damage_reason_id = $2`,
		reason.Name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM damage_reasons WHERE damage_reason_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
