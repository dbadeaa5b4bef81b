// Package models contains data structures for the Ripple client's domain.
package models

import "time"

// User represents a user as returned by the Ripple backend.
type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the authenticated identity held by the running client.
// It is owned by the session package; every other package reads it
// through a snapshot copy.
type Session struct {
	Token           string `json:"token"`
	User            *User  `json:"user,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
