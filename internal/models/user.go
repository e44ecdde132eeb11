package models

import "time"

// User is a registered account. Records are immutable after creation; there
// is no password rotation or deletion path in the current API.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
