package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"reservio/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservationWithLock_OverlapRejected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	first := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, GuestName: "Alice",
		CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-15"),
		Adults: 2, Status: models.StatusPending, Confirmation: "conf-1",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Equal(t, int64(1), first.Version)

	second := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, GuestName: "Bob",
		CheckIn: mustDate(t, "2025-08-14"), CheckOut: mustDate(t, "2025-08-16"),
		Adults: 1, Status: models.StatusPending, Confirmation: "conf-2",
	}
	err := db.CreateReservationWithLock(ctx, second)
	assert.ErrorIs(t, err, ErrNotAvailable)

	// Back-to-back stay on the checkout day is allowed
	third := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, GuestName: "Carol",
		CheckIn: mustDate(t, "2025-08-15"), CheckOut: mustDate(t, "2025-08-17"),
		Adults: 1, Status: models.StatusPending, Confirmation: "conf-3",
	}
	assert.NoError(t, db.CreateReservationWithLock(ctx, third))
}

func TestGetReservation_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	res := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number,
		GuestName: "Alice", GuestEmail: "alice@example.com", GuestPhone: "+331234",
		CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-12"),
		Adults: 2, Children: 1, Status: models.StatusPending,
		TotalCents: 20000, Confirmation: "conf-rt",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))

	got, err := db.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.GuestName, got.GuestName)
	assert.Equal(t, res.CheckIn, got.CheckIn)
	assert.Equal(t, res.CheckOut, got.CheckOut)
	assert.Equal(t, 2, got.Nights())
	assert.Equal(t, int64(20000), got.TotalCents)

	byConf, err := db.GetReservationByConfirmation(ctx, "conf-rt")
	require.NoError(t, err)
	assert.Equal(t, got.ID, byConf.ID)
}

func TestGetUserReservations_DatesSurviveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	res := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, UserID: 7,
		GuestName: "Alice", CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-12"),
		Adults: 1, Status: models.StatusPending, Confirmation: "conf-user",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))

	list, err := db.GetUserReservations(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mustDate(t, "2025-08-10"), list[0].CheckIn)
	assert.Equal(t, mustDate(t, "2025-08-12"), list[0].CheckOut)
}

func TestUpdateReservationStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	res := &models.Reservation{
		HotelID: hotel.ID, RoomID: room.ID, RoomNumber: room.Number, GuestName: "Alice",
		CheckIn: mustDate(t, "2025-08-10"), CheckOut: mustDate(t, "2025-08-12"),
		Adults: 1, Status: models.StatusPending, Confirmation: "conf-v",
	}
	require.NoError(t, db.CreateReservationWithLock(ctx, res))

	err := db.UpdateReservationStatusWithVersion(ctx, res.ID, 1, models.StatusConfirmed)
	require.NoError(t, err)

	// Stale version must be rejected
	err = db.UpdateReservationStatusWithVersion(ctx, res.ID, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	got, err := db.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestGetReservationsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)
	other := createTestRoom(t, db, hotel.ID, "102", 2)

	for i, r := range []*models.Reservation{
		{RoomID: room.ID, CheckIn: mustDate(t, "2025-08-01"), CheckOut: mustDate(t, "2025-08-03")},
		{RoomID: other.ID, CheckIn: mustDate(t, "2025-08-02"), CheckOut: mustDate(t, "2025-08-05")},
		{RoomID: room.ID, CheckIn: mustDate(t, "2025-09-01"), CheckOut: mustDate(t, "2025-09-03")},
	} {
		r.HotelID = hotel.ID
		r.GuestName = "Guest"
		r.Adults = 1
		r.Status = models.StatusConfirmed
		r.Confirmation = "conf-range-" + string(rune('a'+i))
		require.NoError(t, db.CreateReservationWithLock(ctx, r))
	}

	reservations, err := db.GetReservationsByDateRange(ctx, hotel.ID,
		mustDate(t, "2025-08-01"), mustDate(t, "2025-08-31"))
	require.NoError(t, err)
	assert.Len(t, reservations, 2)
}

func TestConcurrentReservation(t *testing.T) {
	logger := zerolog.Nop()
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	hotel := createTestHotel(t, db)
	room := createTestRoom(t, db, hotel.ID, "101", 2)

	checkIn := mustDate(t, "2025-08-10")
	checkOut := mustDate(t, "2025-08-12")

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			res := &models.Reservation{
				HotelID:      hotel.ID,
				RoomID:       room.ID,
				RoomNumber:   room.Number,
				GuestName:    "Guest",
				CheckIn:      checkIn,
				CheckOut:     checkOut,
				Adults:       1,
				Status:       models.StatusPending,
				Confirmation: "conf-conc-" + string(rune('a'+id)),
			}
			results <- db.CreateReservationWithLock(ctx, res)
		}(i)
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		}
	}

	// The transactional overlap check admits exactly one winner.
	assert.Equal(t, 1, successCount, "only one reservation should succeed for the same room and dates")

	count, err := db.CountOverlapping(ctx, room.ID, checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
