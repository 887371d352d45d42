package wards

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linentrack/linentrack/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Ward, int, error)
	Get(ctx context.Context, id int64) (Ward, error)
	Create(ctx context.Context, ward Ward) (Ward, error)
	Update(ctx context.Context, id int64, ward Ward) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Ward, int, error) {
	query := `
		SELECT w.ward_id, w.ward_name, w.hospital_id,
		       COALESCE(h.hospital_name, ''), COALESCE(w.is_active, TRUE)
		FROM wards w
		LEFT JOIN hospitals h ON h.hospital_id = w.hospital_id
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM wards w WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND w.ward_name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.HospitalID != nil {
		argCount++
		clause := ` AND w.hospital_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.HospitalID)
	}
	if filters.IsActive != nil {
		argCount++
		clause := ` AND COALESCE(w.is_active, TRUE) = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
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

	var wards []Ward
	for rows.Next() {
		var w Ward
		if err := rows.Scan(&w.ID, &w.Name, &w.HospitalID, &w.HospitalName, &w.IsActive); err != nil {
			return nil, 0, err
		}
		wards = append(wards, w)
	}
	return wards, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Ward, error) {
	var w Ward
	err := r.pool.QueryRow(ctx, `
		SELECT w.ward_id, w.ward_name, w.hospital_id,
		       COALESCE(h.hospital_name, ''), COALESCE(w.is_active, TRUE)
		FROM wards w
		LEFT JOIN hospitals h ON h.hospital_id = w.hospital_id
		WHERE w.ward_id = $1`, id).
		Scan(&w.ID, &w.Name, &w.HospitalID, &w.HospitalName, &w.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ward{}, shared.ErrNotFound
		}
		return Ward{}, err
	}
	return w, nil
}

func (r *repository) Create(ctx context.Context, ward Ward) (Ward, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wards (ward_name, hospital_id, is_active)
		VALUES ($1, $2, $3)
		RETURNING ward_id`,
		ward.Name, ward.HospitalID, ward.IsActive).
		Scan(&ward.ID)
	if err != nil {
		return Ward{}, err
	}
	return ward, nil
}

func (r *repository) Update(ctx context.Context, id int64, ward Ward) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE wards SET ward_name = $1, hospital_id = $2, is_active = $3
		WHERE ward_id = $4`,
		ward.Name, ward.HospitalID, ward.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wards WHERE ward_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "hospital":
		return "h.hospital_name " + dir
	case "name":
		return "w.ward_name " + dir
	default:
		return "w.ward_name " + dir
	}
}
