package domain

import (
	"context"
	"time"

	"reservio/internal/models"
	"reservio/internal/pricing"
)

type Repository interface {
	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	GetHotel(ctx context.Context, id int64) (*models.Hotel, error)
	GetActiveHotels(ctx context.Context) ([]*models.Hotel, error)
	UpdateHotel(ctx context.Context, hotel *models.Hotel) error

	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	GetRoomsByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error)
	GetAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) ([]*models.Room, error)
	CountAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) (int, error)
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeactivateRoom(ctx context.Context, id int64) error

	CreateReservationWithLock(ctx context.Context, res *models.Reservation) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservationByConfirmation(ctx context.Context, confirmation string) (*models.Reservation, error)
	UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	GetReservationsByDateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]*models.Reservation, error)
	GetUserReservations(ctx context.Context, userID int64) ([]*models.Reservation, error)
	CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type ReportEnqueuer interface {
	EnqueueOccupancyReport(ctx context.Context, hotelID int64, start, end time.Time) error
}

type BookingService interface {
	FindAvailableRooms(ctx context.Context, q models.AvailabilityQuery) ([]*models.Room, error)
	CountAvailableRooms(ctx context.Context, q models.AvailabilityQuery) (int, error)
	QuoteStay(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]pricing.Night, int64, error)
	CreateReservation(ctx context.Context, res *models.Reservation) error
	ConfirmReservation(ctx context.Context, id, version, actorID int64) error
	CancelReservation(ctx context.Context, id, version, actorID int64) error
	CompleteReservation(ctx context.Context, id, version, actorID int64) error
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservationByConfirmation(ctx context.Context, confirmation string) (*models.Reservation, error)
	GetReservationsByDateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]*models.Reservation, error)
}

type RoomService interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeactivateRoom(ctx context.Context, id int64) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	GetRoomsByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error)
}

type HotelService interface {
	CreateHotel(ctx context.Context, hotel *models.Hotel) error
	GetHotel(ctx context.Context, id int64) (*models.Hotel, error)
	GetActiveHotels(ctx context.Context) ([]*models.Hotel, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (*models.Session, error)
}
