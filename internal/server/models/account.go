// Package models defines the server-side data models of gophauth.
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is an identity record owned by the account store. Values handed
// out by the store are copies: changing one never changes what is stored
// until it is passed back to Save.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the account carries the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
