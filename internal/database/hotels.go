package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reservio/internal/models"
)

func (db *DB) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `INSERT INTO hotels (name, currency, timezone, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		hotel.Name, hotel.Currency, hotel.Timezone, hotel.IsActive, now, now)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	hotel.ID = id
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	return nil
}

func (db *DB) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	query := `SELECT id, name, currency, timezone, is_active, created_at, updated_at
	          FROM hotels WHERE id = ?`
	var h models.Hotel
	err := db.QueryRowContext(ctx, query, id).Scan(
		&h.ID, &h.Name, &h.Currency, &h.Timezone, &h.IsActive, &h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &h, nil
}

func (db *DB) GetActiveHotels(ctx context.Context) ([]*models.Hotel, error) {
	query := `SELECT id, name, currency, timezone, is_active, created_at, updated_at
	          FROM hotels WHERE is_active = 1 ORDER BY name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get hotels: %w", err)
	}
	defer rows.Close()

	var hotels []*models.Hotel
	for rows.Next() {
		h := &models.Hotel{}
		err := rows.Scan(&h.ID, &h.Name, &h.Currency, &h.Timezone, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func (db *DB) UpdateHotel(ctx context.Context, hotel *models.Hotel) error {
	query := `UPDATE hotels SET name = ?, currency = ?, timezone = ?, is_active = ?, updated_at = ?
	          WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		hotel.Name, hotel.Currency, hotel.Timezone, hotel.IsActive, time.Now(), hotel.ID)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
