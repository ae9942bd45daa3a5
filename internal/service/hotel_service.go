package service

import (
	"context"
	"errors"
	"strings"

	"reservio/internal/domain"
	"reservio/internal/models"
)

var ErrInvalidHotel = errors.New("invalid hotel definition")

type HotelService struct {
	repo domain.Repository
}

func NewHotelService(repo domain.Repository) *HotelService {
	return &HotelService{repo: repo}
}

func (s *HotelService) CreateHotel(ctx context.Context, hotel *models.Hotel) error {
	hotel.Name = strings.TrimSpace(hotel.Name)
	if hotel.Name == "" {
		return ErrInvalidHotel
	}
	if hotel.Currency == "" {
		hotel.Currency = "EUR"
	}
	if hotel.Timezone == "" {
		hotel.Timezone = "UTC"
	}
	hotel.IsActive = true
	return s.repo.CreateHotel(ctx, hotel)
}

func (s *HotelService) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	return s.repo.GetHotel(ctx, id)
}

func (s *HotelService) GetActiveHotels(ctx context.Context) ([]*models.Hotel, error) {
	return s.repo.GetActiveHotels(ctx)
}
