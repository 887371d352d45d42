package wards

import (
	"context"
	"fmt"
	"strings"

	"github.com/linentrack/linentrack/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Ward, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Ward, error) {
	if id <= 0 {
		return Ward{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, ward Ward) (Ward, error) {
	if err := validate(ward); err != nil {
		return Ward{}, err
	}
	ward.IsActive = true
	return s.repo.Create(ctx, ward)
}

func (s *Service) Update(ctx context.Context, id int64, ward Ward) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(ward); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, ward)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func validate(ward Ward) error {
	if strings.TrimSpace(ward.Name) == "" {
		return fmt.Errorf("%w: ward name is required", shared.ErrValidation)
	}
	if ward.HospitalID <= 0 {
		return fmt.Errorf("%w: hospital is required", shared.ErrValidation)
	}
	return nil
}
