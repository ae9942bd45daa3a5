package service

import (
	"context"
	"io"
	"testing"
	"time"

	"reservio/internal/database"
	"reservio/internal/events"
	"reservio/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateHotel(ctx context.Context, h *models.Hotel) error {
	return m.Called(ctx, h).Error(0)
}
func (m *mockRepo) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}
func (m *mockRepo) GetActiveHotels(ctx context.Context) ([]*models.Hotel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Hotel), args.Error(1)
}
func (m *mockRepo) UpdateHotel(ctx context.Context, h *models.Hotel) error {
	return m.Called(ctx, h).Error(0)
}
func (m *mockRepo) CreateRoom(ctx context.Context, r *models.Room) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}
func (m *mockRepo) GetRoomsByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}
func (m *mockRepo) GetAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) ([]*models.Room, error) {
	args := m.Called(ctx, hotelID, checkIn, checkOut, partySize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}
func (m *mockRepo) CountAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) (int, error) {
	args := m.Called(ctx, hotelID, checkIn, checkOut, partySize)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) UpdateRoom(ctx context.Context, r *models.Room) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) DeactivateRoom(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockRepo) CreateReservationWithLock(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetReservationByConfirmation(ctx context.Context, confirmation string) (*models.Reservation, error) {
	args := m.Called(ctx, confirmation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	return m.Called(ctx, id, fromVersion, status).Error(0)
}
func (m *mockRepo) GetReservationsByDateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]*models.Reservation, error) {
	args := m.Called(ctx, hotelID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockRepo) GetUserReservations(ctx context.Context, userID int64) ([]*models.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockRepo) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	args := m.Called(ctx, roomID, checkIn, checkOut)
	return args.Int(0), args.Error(1)
}
func (m *mockRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func futureDay(days int) time.Time {
	return time.Now().Truncate(24 * time.Hour).AddDate(0, 0, days)
}

func bookableRoom() *models.Room {
	return &models.Room{
		ID:         5,
		HotelID:    1,
		Number:     "101",
		Capacity:   2,
		PriceCents: 10000,
		Status:     models.RoomStatusAvailable,
		IsActive:   true,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("GetRoom", ctx, int64(5)).Return(bookableRoom(), nil).Once()
		repo.On("CreateReservationWithLock", ctx, mock.AnythingOfType("*models.Reservation")).Return(nil).Once()

		res := &models.Reservation{
			HotelID:   1,
			RoomID:    5,
			GuestName: "Alice",
			CheckIn:   futureDay(10),
			CheckOut:  futureDay(12),
			Adults:    2,
		}
		require.NoError(t, svc.CreateReservation(ctx, res))

		assert.Equal(t, models.StatusPending, res.Status)
		assert.Equal(t, int64(20000), res.TotalCents)
		assert.Equal(t, "101", res.RoomNumber)
		assert.NotEmpty(t, res.Confirmation)
		repo.AssertExpectations(t)
	})

	t.Run("RoomNotAvailableForDates", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("GetRoom", ctx, int64(5)).Return(bookableRoom(), nil).Once()
		repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(database.ErrNotAvailable).Once()

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrNotAvailable)
	})

	t.Run("PartyExceedsCapacity", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("GetRoom", ctx, int64(5)).Return(bookableRoom(), nil).Once()

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 2, Children: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrNotAvailable)
	})

	t.Run("InactiveRoom", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		room := bookableRoom()
		room.IsActive = false
		repo.On("GetRoom", ctx, int64(5)).Return(room, nil).Once()

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, ErrRoomNotBookable)
	})

	t.Run("MaintenanceRoom", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		room := bookableRoom()
		room.Status = models.RoomStatusMaintenance
		repo.On("GetRoom", ctx, int64(5)).Return(room, nil).Once()

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, ErrRoomNotBookable)
	})

	t.Run("RoomFromDifferentHotel", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("GetRoom", ctx, int64(5)).Return(bookableRoom(), nil).Once()

		res := &models.Reservation{HotelID: 2, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("PastCheckIn", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(-1), CheckOut: futureDay(2), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrPastDate)
	})

	t.Run("TooFarAhead", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 30, 0, testLogger())

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(31), CheckOut: futureDay(33), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrDateTooFar)
	})

	t.Run("StayTooLong", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 365, 7, testLogger())

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(1), CheckOut: futureDay(10), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrDateTooFar)
	})

	t.Run("CheckOutNotAfterCheckIn", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Bob", CheckIn: futureDay(10), CheckOut: futureDay(10), Adults: 1}
		err := svc.CreateReservation(ctx, res)
		assert.ErrorIs(t, err, database.ErrInvalidDateRange)
	})
}

func TestCreateReservationPublishesEvent(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	bus := events.NewEventBus()

	var received []string
	bus.Subscribe(events.EventReservationCreated, func(e *events.Event) error {
		received = append(received, e.Type)
		return nil
	})

	svc := NewBookingService(repo, bus, nil, 0, 0, testLogger())
	repo.On("GetRoom", ctx, int64(5)).Return(bookableRoom(), nil).Once()
	repo.On("CreateReservationWithLock", ctx, mock.Anything).Return(nil).Once()

	res := &models.Reservation{HotelID: 1, RoomID: 5, GuestName: "Alice", CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1}
	require.NoError(t, svc.CreateReservation(ctx, res))
	assert.Equal(t, []string{events.EventReservationCreated}, received)
}

func TestFindAvailableRooms(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesPartySize", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		checkIn, checkOut := futureDay(10), futureDay(12)
		repo.On("GetHotel", ctx, int64(1)).Return(&models.Hotel{ID: 1}, nil).Once()
		repo.On("GetAvailableRooms", ctx, int64(1), checkIn, checkOut, 3).
			Return([]*models.Room{bookableRoom()}, nil).Once()

		rooms, err := svc.FindAvailableRooms(ctx, models.AvailabilityQuery{
			HotelID: 1, CheckIn: checkIn, CheckOut: checkOut, Adults: 2, Children: 1,
		})
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
		repo.AssertExpectations(t)
	})

	t.Run("UnknownHotel", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("GetHotel", ctx, int64(9)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.FindAvailableRooms(ctx, models.AvailabilityQuery{
			HotelID: 9, CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 1,
		})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("ZeroAdults", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		_, err := svc.FindAvailableRooms(ctx, models.AvailabilityQuery{
			HotelID: 1, CheckIn: futureDay(10), CheckOut: futureDay(12), Adults: 0,
		})
		assert.Error(t, err)
	})
}

func TestCountAvailableRooms(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

	checkIn, checkOut := futureDay(10), futureDay(12)
	repo.On("GetHotel", ctx, int64(1)).Return(&models.Hotel{ID: 1}, nil).Once()
	repo.On("CountAvailableRooms", ctx, int64(1), checkIn, checkOut, 2).Return(3, nil).Once()

	count, err := svc.CountAvailableRooms(ctx, models.AvailabilityQuery{
		HotelID: 1, CheckIn: checkIn, CheckOut: checkOut, Adults: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQuoteStay(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

	room := bookableRoom()
	room.SpecialPrices = []models.SpecialPrice{
		{StartMonth: 12, StartDay: 20, EndMonth: 1, EndDay: 5, PriceCents: 20000},
	}
	repo.On("GetRoom", ctx, int64(5)).Return(room, nil).Once()

	checkIn := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)

	nights, total, err := svc.QuoteStay(ctx, 5, checkIn, checkOut)
	require.NoError(t, err)
	require.Len(t, nights, 3)
	assert.Equal(t, int64(60000), total)
}

func TestReservationTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirm", func(t *testing.T) {
		repo := new(mockRepo)
		bus := events.NewEventBus()
		var got []string
		bus.Subscribe(events.EventReservationConfirmed, func(e *events.Event) error {
			got = append(got, e.Type)
			return nil
		})
		svc := NewBookingService(repo, bus, nil, 0, 0, testLogger())

		repo.On("UpdateReservationStatusWithVersion", ctx, int64(7), int64(1), models.StatusConfirmed).Return(nil).Once()
		repo.On("GetReservation", ctx, int64(7)).Return(&models.Reservation{ID: 7, Status: models.StatusConfirmed}, nil).Once()

		require.NoError(t, svc.ConfirmReservation(ctx, 7, 1, 42))
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

		repo.On("UpdateReservationStatusWithVersion", ctx, int64(7), int64(1), models.StatusCancelled).
			Return(database.ErrConcurrentModification).Once()

		err := svc.CancelReservation(ctx, 7, 1, 42)
		assert.ErrorIs(t, err, database.ErrConcurrentModification)
	})
}

func TestGetReservationsByDateRange(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewBookingService(repo, events.NewEventBus(), nil, 0, 0, testLogger())

	_, err := svc.GetReservationsByDateRange(ctx, 1, futureDay(5), futureDay(1))
	assert.ErrorIs(t, err, database.ErrInvalidDateRange)
}
