package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reservio/internal/models"
)

// date() strips the DATE column affinity so the driver hands back the
// plain YYYY-MM-DD text instead of a converted time.Time.
const reservationColumns = `id, hotel_id, room_id, room_number, user_id, guest_name, guest_email,
                            guest_phone, date(check_in), date(check_out), adults, children, status,
                            total_cents, confirmation, created_at, updated_at, version`

func scanReservation(scan func(dest ...any) error) (*models.Reservation, error) {
	r := &models.Reservation{}
	var userID sql.NullInt64
	var checkIn, checkOut string
	err := scan(
		&r.ID, &r.HotelID, &r.RoomID, &r.RoomNumber, &userID, &r.GuestName, &r.GuestEmail,
		&r.GuestPhone, &checkIn, &checkOut, &r.Adults, &r.Children, &r.Status,
		&r.TotalCents, &r.Confirmation, &r.CreatedAt, &r.UpdatedAt, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		r.UserID = userID.Int64
	}

	if r.CheckIn, err = time.Parse(dateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check-in date %s: %w", checkIn, err)
	}
	if r.CheckOut, err = time.Parse(dateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check-out date %s: %w", checkOut, err)
	}
	return r, nil
}

// CountOverlapping returns the number of non-cancelled reservations on the
// room that overlap [checkIn, checkOut).
func (db *DB) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM reservations
	          WHERE room_id = ? AND status != ?
	          AND check_in < ? AND check_out > ?`
	var count int
	err := db.QueryRowContext(ctx, query, roomID, models.StatusCancelled,
		checkOut.Format(dateLayout), checkIn.Format(dateLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping reservations: %w", err)
	}
	return count, nil
}

// CreateReservationWithLock re-checks the overlap invariant and inserts the
// reservation inside a single transaction. Two concurrent requests for the
// same room and dates cannot both commit; the loser gets ErrNotAvailable.
func (db *DB) CreateReservationWithLock(ctx context.Context, res *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Check for overlapping reservations inside the transaction
	var overlapping int
	queryCount := `SELECT COUNT(*) FROM reservations
	               WHERE room_id = ? AND status != ?
	               AND check_in < ? AND check_out > ?`
	err = tx.QueryRowContext(ctx, queryCount, res.RoomID, models.StatusCancelled,
		res.CheckOut.Format(dateLayout), res.CheckIn.Format(dateLayout)).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrNotAvailable
	}

	// 2. Create reservation
	queryInsert := `INSERT INTO reservations (
				hotel_id, room_id, room_number, user_id, guest_name, guest_email, guest_phone,
				check_in, check_out, adults, children, status, total_cents, confirmation,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	var userID any
	if res.UserID != 0 {
		userID = res.UserID
	}
	result, err := tx.ExecContext(ctx, queryInsert,
		res.HotelID,
		res.RoomID,
		res.RoomNumber,
		userID,
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.CheckIn.Format(dateLayout),
		res.CheckOut.Format(dateLayout),
		res.Adults,
		res.Children,
		res.Status,
		res.TotalCents,
		res.Confirmation,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	res.ID = id
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Version = 1

	return tx.Commit()
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

func (db *DB) GetReservationByConfirmation(ctx context.Context, confirmation string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE confirmation = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, confirmation).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation by confirmation: %w", err)
	}
	return res, nil
}

// UpdateReservationStatusWithVersion applies an optimistic-concurrency status
// update. A stale version leaves the row untouched and reports
// ErrConcurrentModification.
func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ?
	          WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// GetReservationsByDateRange returns the hotel's reservations whose stay
// overlaps [start, end], any status, ordered by check-in.
func (db *DB) GetReservationsByDateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE hotel_id = ? AND check_in <= ? AND check_out > ?
	          ORDER BY check_in ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, hotelID,
		end.Format(dateLayout), start.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations by date range: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (db *DB) GetUserReservations(ctx context.Context, userID int64) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE user_id = ? ORDER BY check_in DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
