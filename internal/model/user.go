// Package model defines the data structures used throughout the application.
package model

import "time"

// Role values carried in issued tokens. The service only ever assigns
// RoleUser today; the claim exists so admin tooling can be added without
// reissuing every token.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
//
// Email is the unique key. Uniqueness is pre-checked at the service layer
// (so the caller gets a friendly validation message) and backed by a UNIQUE
// column constraint, which closes the race between two concurrent
// registrations of the same address.
//
// PasswordHash holds a bcrypt hash and is never serialized — the `json:"-"`
// tag keeps it out of every API response.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
