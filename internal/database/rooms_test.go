package database

import (
	"context"
	"testing"
	"time"

	"reservio/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func createTestHotel(t *testing.T, db *DB) *models.Hotel {
	hotel := &models.Hotel{Name: "Test Hotel", Currency: "EUR", Timezone: "UTC", IsActive: true}
	require.NoError(t, db.CreateHotel(context.Background(), hotel))
	return hotel
}

func createTestRoom(t *testing.T, db *DB, hotelID int64, number string, capacity int) *models.Room {
	room := &models.Room{
		HotelID:    hotelID,
		Number:     number,
		Capacity:   capacity,
		PriceCents: 10000,
		Status:     models.RoomStatusAvailable,
		IsActive:   true,
	}
	require.NoError(t, db.CreateRoom(context.Background(), room))
	return room
}

func mustDate(t *testing.T, s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestCreateRoom_PriceOverridesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := &models.Room{
		HotelID:    hotel.ID,
		Number:     "101",
		Capacity:   2,
		PriceCents: 10000,
		Status:     models.RoomStatusAvailable,
		IsActive:   true,
		MonthlyPrices: []models.MonthlyPrice{
			{StartMonth: 6, EndMonth: 8, PriceCents: 15000},
		},
		SpecialPrices: []models.SpecialPrice{
			{StartMonth: 12, StartDay: 20, EndMonth: 1, EndDay: 5, PriceCents: 20000},
		},
	}
	require.NoError(t, db.CreateRoom(ctx, room))

	got, err := db.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.MonthlyPrices, got.MonthlyPrices)
	assert.Equal(t, room.SpecialPrices, got.SpecialPrices)
	assert.Equal(t, int64(10000), got.PriceCents)
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	hotel := createTestHotel(t, db)
	createTestRoom(t, db, hotel.ID, "101", 2)

	room := &models.Room{
		HotelID: hotel.ID, Number: "101", Capacity: 2,
		Status: models.RoomStatusAvailable, IsActive: true,
	}
	err := db.CreateRoom(context.Background(), room)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetAvailableRooms_OverlapExclusion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	// Existing confirmed stay Aug 10 - Aug 15 (checkout exclusive)
	res := &models.Reservation{
		HotelID:      hotel.ID,
		RoomID:       room.ID,
		RoomNumber:   room.Number,
		GuestName:    "Alice",
		CheckIn:      mustDate(t, "2025-08-10"),
		CheckOut:     mustDate(t, "2025-08-15"),
		Adults:       2,
		Status:       models.StatusConfirmed,
		Confirmation: "conf-overlap-1",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))

	// Aug 14 - Aug 16 overlaps the existing stay
	rooms, err := db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-14"), mustDate(t, "2025-08-16"), 2)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	// Aug 15 - Aug 18 starts on the checkout day and must be free
	rooms, err = db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-15"), mustDate(t, "2025-08-18"), 2)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)

	// Aug 05 - Aug 10 ends on the check-in day and must be free
	rooms, err = db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-05"), mustDate(t, "2025-08-10"), 2)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestGetAvailableRooms_CancelledDoesNotBlock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	res := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, GuestName: "Bob",
		CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-15"),
		Adults: 1, Status: models.StatusConfirmed, Confirmation: "conf-cancel-1",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))
	require.NoError(t, db.UpdateReservationStatusWithVersion(ctx, res.ID, res.Version, models.StatusCancelled))

	rooms, err := db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-12"), mustDate(t, "2025-08-14"), 2)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestGetAvailableRooms_CapacityFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	createTestRoom(t, db, hotel.ID, "101", 2)
	big := createTestRoom(t, db, hotel.ID, "201", 4)

	rooms, err := db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-10"), mustDate(t, "2025-08-12"), 3)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, big.ID, rooms[0].ID)
}

func TestGetAvailableRooms_SkipsInactiveAndNonAvailable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	maintenance := createTestRoom(t, db, hotel.ID, "102", 2)
	maintenance.Status = models.RoomStatusMaintenance
	require.NoError(t, db.UpdateRoom(ctx, maintenance))

	deactivated := createTestRoom(t, db, hotel.ID, "103", 2)
	require.NoError(t, db.DeactivateRoom(ctx, deactivated.ID))

	rooms, err := db.GetAvailableRooms(ctx, hotel.ID, mustDate(t, "2025-08-10"), mustDate(t, "2025-08-12"), 2)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)
}

func TestCountAvailableRooms_MatchesList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	createTestRoom(t, db, hotel.ID, "101", 2)
	createTestRoom(t, db, hotel.ID, "102", 3)

	checkIn := mustDate(t, "2025-08-10")
	checkOut := mustDate(t, "2025-08-12")

	rooms, err := db.GetAvailableRooms(ctx, hotel.ID, checkIn, checkOut, 2)
	require.NoError(t, err)
	count, err := db.CountAvailableRooms(ctx, hotel.ID, checkIn, checkOut, 2)
	require.NoError(t, err)
	assert.Equal(t, len(rooms), count)
}

func TestGetAvailableRooms_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	createTestRoom(t, db, hotel.ID, "101", 2)
	booked := createTestRoom(t, db, hotel.ID, "102", 2)
	createTestRoom(t, db, hotel.ID, "201", 4)

	res := &models.Reservation{
		HotelID: hotel.ID, RoomID: booked.ID, RoomNumber: booked.Number, GuestName: "Alice",
		CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-12"),
		Adults: 1, Status: models.StatusConfirmed, Confirmation: "conf-idem",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))

	checkIn := mustDate(t, "2025-08-10")
	checkOut := mustDate(t, "2025-08-12")

	ids := func(rooms []*models.Room) []int64 {
		out := make([]int64, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, r.ID)
		}
		return out
	}

	first, err := db.GetAvailableRooms(ctx, hotel.ID, checkIn, checkOut, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A read must not change the answer: same arguments, same set.
	second, err := db.GetAvailableRooms(ctx, hotel.ID, checkIn, checkOut, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(first), ids(second))

	third, err := db.GetAvailableRooms(ctx, hotel.ID, checkIn, checkOut, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(first), ids(third))
}

func TestGetRoom_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetRoom(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
