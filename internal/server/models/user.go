// Package models defines server-side data models persisted in the database
// and exchanged with the generation backend.
package models

import "time"

// User is an account identified by a unique email.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
