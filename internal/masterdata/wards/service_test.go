package wards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linentrack/linentrack/internal/masterdata/shared"
)

type memoryWardRepo struct {
	wards  map[int64]Ward
	nextID int64
}

func (r *memoryWardRepo) List(ctx context.Context, filters shared.ListFilters) ([]Ward, int, error) {
	out := []Ward{}
	for _, w := range r.wards {
		if filters.HospitalID != nil && w.HospitalID != *filters.HospitalID {
			continue
		}
		out = append(out, w)
	}
	return out, len(out), nil
}

func (r *memoryWardRepo) Get(ctx context.Context, id int64) (Ward, error) {
	w, ok := r.wards[id]
	if !ok {
		return Ward{}, shared.ErrNotFound
	}
	return w, nil
}

func (r *memoryWardRepo) Create(ctx context.Context, ward Ward) (Ward, error) {
	r.nextID++
	ward.ID = r.nextID
	r.wards[ward.ID] = ward
	return ward, nil
}

func (r *memoryWardRepo) Update(ctx context.Context, id int64, ward Ward) error {
	if _, ok := r.wards[id]; !ok {
		return shared.ErrNotFound
	}
	ward.ID = id
	r.wards[id] = ward
	return nil
}

func (r *memoryWardRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.wards[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.wards, id)
	return nil
}

func TestWardService(t *testing.T) {
	repo := &memoryWardRepo{wards: map[int64]Ward{}}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Ward{Name: "  "})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Ward{Name: "อายุรกรรมชาย"})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(ctx, Ward{Name: "อายุรกรรมชาย", HospitalID: 1})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "อายุรกรรมชาย", got.Name)

	_, err = svc.Get(ctx, 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)

	hospital := int64(1)
	listed, total, err := svc.List(ctx, shared.ListFilters{HospitalID: &hospital})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, listed, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), shared.ErrNotFound)
}
