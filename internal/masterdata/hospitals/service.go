package hospitals

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Hospital, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Hospital, error) {
	if id <= 0 {
		return Hospital{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, hospital Hospital) (Hospital, error) {
	if strings.TrimSpace(hospital.Name) == "" {
		return Hospital{}, fmt.Errorf("%w: hospital name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, hospital)
}

func (s *Service) Update(ctx context.Context, id int64, hospital Hospital) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(hospital.Name) == "" {
		return fmt.Errorf("%w: hospital name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, hospital)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
