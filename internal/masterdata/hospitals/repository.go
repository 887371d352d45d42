package hospitals

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linentrack/linentrack/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Hospital, int, error)
	Get(ctx context.Context, id int64) (Hospital, error)
	Create(ctx context.Context, hospital Hospital) (Hospital, error)
	Update(ctx context.Context, id int64, hospital Hospital) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Hospital, int, error) {
	query := `SELECT hospital_id, hospital_name, address, contact_info, created_at
		FROM hospitals WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM hospitals WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND hospital_name ILIKE $` + strconv.Itoa(argCount)
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
	query += ` ORDER BY hospital_name ` + dir
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

	var hospitals []Hospital
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.ContactInfo, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Hospital, error) {
	var h Hospital
	err := r.pool.QueryRow(ctx, `
		SELECT hospital_id, hospital_name, address, contact_info, created_at
		FROM hospitals WHERE hospital_id = $1`, id).
		Scan(&h.ID, &h.Name, &h.Address, &h.ContactInfo, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Hospital{}, shared.ErrNotFound
		}
		return Hospital{}, err
	}
	return h, nil
}

func (r *repository) Create(ctx context.Context, hospital Hospital) (Hospital, error) {
	hospital.CreatedAt = time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hospitals (hospital_name, address, contact_info, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING hospital_id`,
		hospital.Name, hospital.Address, hospital.ContactInfo, hospital.CreatedAt).
		Scan(&hospital.ID)
	if err != nil {
		return Hospital{}, err
	}
	return hospital, nil
}

func (r *repository) Update(ctx context.Context, id int64, hospital Hospital) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE hospitals SET hospital_name = $1, address = $2, contact_info = $3
		WHERE hospital_id = $4`,
		hospital.Name, hospital.Address, hospital.ContactInfo, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hospitals WHERE hospital_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
