// Package model defines the data structures used throughout the application.
package model

import "time"

// RoleAdmin is the only role the admin API accepts.
const RoleAdmin = "admin"

// User is an admin account. Public visitors never have a User row.
//
// PasswordHash is a bcrypt hash and is never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
