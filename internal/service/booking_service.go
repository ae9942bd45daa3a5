package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservio/internal/database"
	"reservio/internal/domain"
	"reservio/internal/events"
	"reservio/internal/models"
	"reservio/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrRoomNotBookable = errors.New("room is inactive or not open for booking")

type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	reports        domain.ReportEnqueuer
	maxAdvanceDays int
	maxStayNights  int
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, reports domain.ReportEnqueuer, maxAdvanceDays, maxStayNights int, logger *zerolog.Logger) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if maxStayNights <= 0 {
		maxStayNights = models.DefaultMaxStayNights
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		reports:        reports,
		maxAdvanceDays: maxAdvanceDays,
		maxStayNights:  maxStayNights,
		logger:         logger,
	}
}

// validateStayRange checks the pure date-range invariants shared by
// availability reads and reservation writes. Time-of-day is ignored.
func validateStayRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return database.ErrInvalidDateRange
	}
	return nil
}

// ValidateReservationDates applies the booking-window rules on top of the
// range check: no stays starting in the past, no stays starting beyond the
// advance window, no stays longer than the configured maximum.
func (s *BookingService) ValidateReservationDates(checkIn, checkOut time.Time) error {
	if err := validateStayRange(checkIn, checkOut); err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return database.ErrPastDate
	}
	if checkIn.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return database.ErrDateTooFar
	}
	if int(checkOut.Sub(checkIn).Hours()/24) > s.maxStayNights {
		return database.ErrDateTooFar
	}
	return nil
}

func (s *BookingService) validateAvailabilityQuery(ctx context.Context, q models.AvailabilityQuery) error {
	if err := validateStayRange(q.CheckIn, q.CheckOut); err != nil {
		return err
	}
	if q.Adults < 1 || q.Children < 0 {
		return fmt.Errorf("%w: adults must be >= 1 and children >= 0", database.ErrInvalidDateRange)
	}

	// Availability against a missing hotel is NotFound, not an empty list.
	if _, err := s.repo.GetHotel(ctx, q.HotelID); err != nil {
		return err
	}
	return nil
}

// FindAvailableRooms returns the hotel's rooms that are active, open for
// booking, large enough for the party and free of overlapping non-cancelled
// reservations over [CheckIn, CheckOut).
func (s *BookingService) FindAvailableRooms(ctx context.Context, q models.AvailabilityQuery) ([]*models.Room, error) {
	if err := s.validateAvailabilityQuery(ctx, q); err != nil {
		return nil, err
	}
	return s.repo.GetAvailableRooms(ctx, q.HotelID, q.CheckIn, q.CheckOut, q.PartySize())
}

// CountAvailableRooms is the count-only variant of FindAvailableRooms.
func (s *BookingService) CountAvailableRooms(ctx context.Context, q models.AvailabilityQuery) (int, error) {
	if err := s.validateAvailabilityQuery(ctx, q); err != nil {
		return 0, err
	}
	return s.repo.CountAvailableRooms(ctx, q.HotelID, q.CheckIn, q.CheckOut, q.PartySize())
}

// QuoteStay prices every night of [checkIn, checkOut) for the room and
// returns the per-night breakdown with the total.
func (s *BookingService) QuoteStay(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]pricing.Night, int64, error) {
	if err := validateStayRange(checkIn, checkOut); err != nil {
		return nil, 0, err
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, 0, err
	}

	nights, err := pricing.Quote(room, checkIn, checkOut)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, n := range nights {
		total += n.PriceCents
	}
	return nights, total, nil
}

// CreateReservation validates the request, prices the stay and inserts the
// reservation through the transactional conditional insert. The overlap
// invariant is enforced by the store, not by a separate read.
func (s *BookingService) CreateReservation(ctx context.Context, res *models.Reservation) error {
	if err := s.ValidateReservationDates(res.CheckIn, res.CheckOut); err != nil {
		return err
	}
	if res.Adults < 1 || res.Children < 0 {
		return fmt.Errorf("%w: adults must be >= 1 and children >= 0", database.ErrInvalidDateRange)
	}

	room, err := s.repo.GetRoom(ctx, res.RoomID)
	if err != nil {
		return err
	}
	if !room.IsActive || room.Status != models.RoomStatusAvailable {
		return ErrRoomNotBookable
	}
	if room.HotelID != res.HotelID {
		return database.ErrNotFound
	}
	if room.Capacity < res.Adults+res.Children {
		return database.ErrNotAvailable
	}

	total, err := pricing.StayTotal(room, res.CheckIn, res.CheckOut)
	if err != nil {
		return err
	}

	res.RoomNumber = room.Number
	res.Status = models.StatusPending
	res.TotalCents = total
	res.Confirmation = uuid.NewString()

	if err := s.repo.CreateReservationWithLock(ctx, res); err != nil {
		return err
	}

	s.publishEvent(events.EventReservationCreated, res, "guest", res.UserID)
	s.enqueueReport(ctx, res)

	return nil
}

func (s *BookingService) ConfirmReservation(ctx context.Context, id, version, actorID int64) error {
	return s.transition(ctx, id, version, actorID, models.StatusConfirmed, events.EventReservationConfirmed)
}

func (s *BookingService) CancelReservation(ctx context.Context, id, version, actorID int64) error {
	return s.transition(ctx, id, version, actorID, models.StatusCancelled, events.EventReservationCancelled)
}

func (s *BookingService) CompleteReservation(ctx context.Context, id, version, actorID int64) error {
	return s.transition(ctx, id, version, actorID, models.StatusCompleted, events.EventReservationCompleted)
}

func (s *BookingService) transition(ctx context.Context, id, version, actorID int64, status, eventType string) error {
	if err := s.repo.UpdateReservationStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	res, err := s.repo.GetReservation(ctx, id)
	if err == nil {
		s.publishEvent(eventType, res, "manager", actorID)
		s.enqueueReport(ctx, res)
	}

	return nil
}

func (s *BookingService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *BookingService) GetReservationByConfirmation(ctx context.Context, confirmation string) (*models.Reservation, error) {
	return s.repo.GetReservationByConfirmation(ctx, confirmation)
}

func (s *BookingService) GetReservationsByDateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]*models.Reservation, error) {
	if start.After(end) {
		return nil, database.ErrInvalidDateRange
	}
	return s.repo.GetReservationsByDateRange(ctx, hotelID, start, end)
}

func (s *BookingService) publishEvent(eventType string, res *models.Reservation, changedBy string, changedByID int64) {
	payload := events.ReservationEventPayload{
		ReservationID: res.ID,
		HotelID:       res.HotelID,
		RoomID:        res.RoomID,
		RoomNumber:    res.RoomNumber,
		GuestName:     res.GuestName,
		CheckIn:       res.CheckIn,
		CheckOut:      res.CheckOut,
		Status:        res.Status,
		TotalCents:    res.TotalCents,
		ChangedBy:     changedBy,
		ChangedByID:   changedByID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil && s.logger != nil {
		s.logger.Error().Err(err).Str("event", eventType).Int64("reservation_id", res.ID).Msg("publish event")
	}
}

func (s *BookingService) enqueueReport(ctx context.Context, res *models.Reservation) {
	if s.reports == nil {
		return
	}
	if err := s.reports.EnqueueOccupancyReport(ctx, res.HotelID, res.CheckIn, res.CheckOut); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Int64("hotel_id", res.HotelID).Msg("enqueue occupancy report")
	}
}
