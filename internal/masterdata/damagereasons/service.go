package damagereasons

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Reason, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Reason, error) {
	if id <= 0 {
		return Reason{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// ReasonName resolves the display label for a reason id. The linen registry
// uses this when stamping discarded items.
func (s *Service) ReasonName(ctx context.Context, id int64) (string, error) {
	reason, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return reason.Name, nil
}

func (s *Service) Create(ctx context.Context, reason Reason) (Reason, error) {
	if strings.TrimSpace(reason.Name) == "" {
		return Reason{}, fmt.Errorf("%w: reason name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, reason)
}

func (s *Service) Update(ctx context.Context, id int64, reason Reason) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if strings.TrimSpace(reason.Name) == "" {
		return fmt.Errorf("%w: reason name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, reason)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}
