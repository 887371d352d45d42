package users

import (
	"errors"
	"time"
)

// User is one staff account in the directory.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        *string
	Phone        *string
	RoleID       *int64
	RoleName     string
	HospitalID   int64
	WardID       int64
	IsActive     bool
	CreatedAt    time.Time
}

// FullName joins the display name parts.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

var (
	ErrNotFound   = errors.New("users: not found")
	ErrDuplicate  = errors.New("users: username already taken")
	ErrValidation = errors.New("users: invalid input")
)
