package auth

import "time"

// Account is the credential view of a user, loaded for login and password
// reset. The directory view lives in the users package.
type Account struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
