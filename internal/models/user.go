package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // admin, manager
	HotelID      int64     `json:"hotel_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the server-side record behind a dashboard login token.
// It is resolved once per request and passed down explicitly; handlers
// never read ambient globals.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	HotelID   int64     `json:"hotel_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
