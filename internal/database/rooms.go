package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservio/internal/models"
)

const roomColumns = `id, hotel_id, number, capacity, price_cents, status, is_active,
                     monthly_prices, special_prices, created_at, updated_at`

func scanRoom(scan func(dest ...any) error) (*models.Room, error) {
	r := &models.Room{}
	var monthlyJSON, specialJSON string
	err := scan(
		&r.ID, &r.HotelID, &r.Number, &r.Capacity, &r.PriceCents, &r.Status, &r.IsActive,
		&monthlyJSON, &specialJSON, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(monthlyJSON), &r.MonthlyPrices); err != nil {
		return nil, fmt.Errorf("failed to decode monthly prices for room %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(specialJSON), &r.SpecialPrices); err != nil {
		return nil, fmt.Errorf("failed to decode special prices for room %d: %w", r.ID, err)
	}
	return r, nil
}

func encodePrices(room *models.Room) (string, string, error) {
	if room.MonthlyPrices == nil {
		room.MonthlyPrices = []models.MonthlyPrice{}
	}
	if room.SpecialPrices == nil {
		room.SpecialPrices = []models.SpecialPrice{}
	}

	monthlyJSON, err := json.Marshal(room.MonthlyPrices)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode monthly prices: %w", err)
	}
	specialJSON, err := json.Marshal(room.SpecialPrices)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode special prices: %w", err)
	}
	return string(monthlyJSON), string(specialJSON), nil
}

func (db *DB) CreateRoom(ctx context.Context, room *models.Room) error {
	monthlyJSON, specialJSON, err := encodePrices(room)
	if err != nil {
		return err
	}

	query := `INSERT INTO rooms (hotel_id, number, capacity, price_cents, status, is_active,
	                             monthly_prices, special_prices, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		room.HotelID, room.Number, room.Capacity, room.PriceCents, room.Status, room.IsActive,
		monthlyJSON, specialJSON, now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	room.ID = id
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (db *DB) GetRoomsByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? AND is_active = 1 ORDER BY number`
	rows, err := db.QueryContext(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// GetAvailableRooms returns active, available rooms of the hotel with enough
// capacity and no overlapping non-cancelled reservation. The overlap test is
// the half-open interval comparison: existing.check_in < check_out AND
// existing.check_out > check_in, so a checkout day never blocks a check-in.
func (db *DB) GetAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) ([]*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r
	          WHERE r.hotel_id = ? AND r.is_active = 1 AND r.status = ? AND r.capacity >= ?
	          AND NOT EXISTS (
	              SELECT 1 FROM reservations b
	              WHERE b.room_id = r.id
	                AND b.status != ?
	                AND b.check_in < ? AND b.check_out > ?
	          )
	          ORDER BY r.number`
	rows, err := db.QueryContext(ctx, query,
		hotelID, models.RoomStatusAvailable, partySize,
		models.StatusCancelled,
		checkOut.Format(dateLayout), checkIn.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get available rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CountAvailableRooms is the count-only variant of GetAvailableRooms.
func (db *DB) CountAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, partySize int) (int, error) {
	query := `SELECT COUNT(*) FROM rooms r
	          WHERE r.hotel_id = ? AND r.is_active = 1 AND r.status = ? AND r.capacity >= ?
	          AND NOT EXISTS (
	              SELECT 1 FROM reservations b
	              WHERE b.room_id = r.id
	                AND b.status != ?
	                AND b.check_in < ? AND b.check_out > ?
	          )`
	var count int
	err := db.QueryRowContext(ctx, query,
		hotelID, models.RoomStatusAvailable, partySize,
		models.StatusCancelled,
		checkOut.Format(dateLayout), checkIn.Format(dateLayout),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count available rooms: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateRoom(ctx context.Context, room *models.Room) error {
	monthlyJSON, specialJSON, err := encodePrices(room)
	if err != nil {
		return err
	}

	query := `UPDATE rooms SET number = ?, capacity = ?, price_cents = ?, status = ?, is_active = ?,
	                           monthly_prices = ?, special_prices = ?, updated_at = ?
	          WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		room.Number, room.Capacity, room.PriceCents, room.Status, room.IsActive,
		monthlyJSON, specialJSON, time.Now(), room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateRoom soft-deletes a room. Rooms are never physically removed.
func (db *DB) DeactivateRoom(ctx context.Context, id int64) error {
	query := `UPDATE rooms SET is_active = 0, status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, models.RoomStatusInactive, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate room: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
