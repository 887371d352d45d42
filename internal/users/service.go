package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service wraps user directory business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput is the payload for a new staff account.
type CreateInput struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	RoleID     *int64
	HospitalID int64
	WardID     int64
}

// Create registers a staff account with a bcrypt password hash. Ward and
// hospital must be given explicitly.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return User{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if input.HospitalID <= 0 {
		return User{}, fmt.Errorf("%w: hospital is required", ErrValidation)
	}
	if input.WardID <= 0 {
		return User{}, fmt.Errorf("%w: ward is required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user := User{
		Username:     input.Username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        input.Email,
		Phone:        input.Phone,
		RoleID:       input.RoleID,
		HospitalID:   input.HospitalID,
		WardID:       input.WardID,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.ID = id
	user.PasswordHash = ""
	return user, nil
}

// List returns the directory.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Deactivate disables an account without removing it.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	return s.repo.SetActive(ctx, id, false)
}
