package models

import "time"

// Reservation holds a room for a guest over [CheckIn, CheckOut).
// CheckOut is exclusive: a one-night stay has CheckOut = CheckIn + 1 day,
// and a checkout day does not conflict with another stay checking in.
type Reservation struct {
	ID           int64     `json:"id"`
	HotelID      int64     `json:"hotel_id"`
	RoomID       int64     `json:"room_id"`
	RoomNumber   string    `json:"room_number"`
	UserID       int64     `json:"user_id,omitempty"`
	GuestName    string    `json:"guest_name"`
	GuestEmail   string    `json:"guest_email"`
	GuestPhone   string    `json:"guest_phone"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Adults       int       `json:"adults"`
	Children     int       `json:"children"`
	Status       string    `json:"status"` // pending, confirmed, cancelled, completed
	TotalCents   int64     `json:"total_cents"`
	Confirmation string    `json:"confirmation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int64     `json:"version"`
}

// Nights returns the number of nights in the stay.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// AvailabilityQuery carries the validated arguments of an availability
// lookup: which hotel, which stay window, how many guests.
type AvailabilityQuery struct {
	HotelID  int64     `json:"hotel_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Adults   int       `json:"adults"`
	Children int       `json:"children"`
}

// PartySize is the total number of guests a room must accommodate.
func (q AvailabilityQuery) PartySize() int {
	return q.Adults + q.Children
}
