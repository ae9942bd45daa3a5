package service

import (
	"context"
	"errors"
	"fmt"

	"reservio/internal/domain"
	"reservio/internal/models"

	"github.com/rs/zerolog"
)

var ErrInvalidRoom = errors.New("invalid room definition")

type RoomService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRoomService(repo domain.Repository, logger *zerolog.Logger) *RoomService {
	return &RoomService{repo: repo, logger: logger}
}

// validatePriceRules rejects malformed month/day values at write time.
// Overlap between entries is allowed: the price resolver applies
// first-match-wins at read time.
func validatePriceRules(room *models.Room) error {
	for i, mp := range room.MonthlyPrices {
		if mp.StartMonth < 1 || mp.StartMonth > 12 || mp.EndMonth < 1 || mp.EndMonth > 12 {
			return fmt.Errorf("%w: monthly price %d has month outside 1-12", ErrInvalidRoom, i)
		}
		if mp.StartMonth > mp.EndMonth {
			return fmt.Errorf("%w: monthly price %d wraps the year, which is not supported", ErrInvalidRoom, i)
		}
		if mp.PriceCents < 0 {
			return fmt.Errorf("%w: monthly price %d is negative", ErrInvalidRoom, i)
		}
	}
	for i, sp := range room.SpecialPrices {
		if sp.StartMonth < 1 || sp.StartMonth > 12 || sp.EndMonth < 1 || sp.EndMonth > 12 {
			return fmt.Errorf("%w: special price %d has month outside 1-12", ErrInvalidRoom, i)
		}
		if sp.StartDay < 1 || sp.StartDay > 31 || sp.EndDay < 1 || sp.EndDay > 31 {
			return fmt.Errorf("%w: special price %d has day outside 1-31", ErrInvalidRoom, i)
		}
		if sp.PriceCents < 0 {
			return fmt.Errorf("%w: special price %d is negative", ErrInvalidRoom, i)
		}
	}
	return nil
}

func validateRoom(room *models.Room) error {
	if room.Number == "" {
		return fmt.Errorf("%w: room number is required", ErrInvalidRoom)
	}
	if room.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be >= 1", ErrInvalidRoom)
	}
	if room.PriceCents < 0 {
		return fmt.Errorf("%w: base price is negative", ErrInvalidRoom)
	}
	switch room.Status {
	case models.RoomStatusAvailable, models.RoomStatusOccupied,
		models.RoomStatusMaintenance, models.RoomStatusInactive:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRoom, room.Status)
	}
	return validatePriceRules(room)
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}
	room.IsActive = true
	if err := validateRoom(room); err != nil {
		return err
	}
	if _, err := s.repo.GetHotel(ctx, room.HotelID); err != nil {
		return err
	}
	return s.repo.CreateRoom(ctx, room)
}

func (s *RoomService) UpdateRoom(ctx context.Context, room *models.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	return s.repo.UpdateRoom(ctx, room)
}

func (s *RoomService) DeactivateRoom(ctx context.Context, id int64) error {
	return s.repo.DeactivateRoom(ctx, id)
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *RoomService) GetRoomsByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error) {
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.repo.GetRoomsByHotel(ctx, hotelID)
}
