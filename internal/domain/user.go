package domain

import "time"

// User is the domain model for registered accounts. Admins are regular
// users with the IsAdmin flag set; there is no further role hierarchy.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsAdmin      bool
	ResetCode    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
