package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"reservio/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, password_hash, name, role, hotel_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	var hotelID any
	if user.HotelID != 0 {
		hotelID = user.HotelID
	}
	result, err := db.ExecContext(ctx, query,
		strings.ToLower(user.Email), user.PasswordHash, user.Name, user.Role, hotelID, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	u := &models.User{}
	var hotelID sql.NullInt64
	err := scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &hotelID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if hotelID.Valid {
		u.HotelID = hotelID.Int64
	}
	return u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, name, role, hotel_id, created_at, updated_at
	          FROM users WHERE email = ?`
	user, err := scanUser(db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, password_hash, name, role, hotel_id, created_at, updated_at
	          FROM users WHERE id = ?`
	user, err := scanUser(db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
