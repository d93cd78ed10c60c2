// Package models defines server-side data models persisted in the database
// and their public projections.
package models

import "time"

// User is a row of the users table. PasswordHash never leaves the service
// layer; callers get a PublicUser instead.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// PublicUser is the public-safe projection of User.
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the credential hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
