package api

import (
	"fmt"
	"time"

	"reservio/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type createReservationRequest struct {
	HotelID    int64  `json:"hotel_id" validate:"required"`
	RoomID     int64  `json:"room_id" validate:"required"`
	GuestName  string `json:"guest_name" validate:"required"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email"`
	GuestPhone string `json:"guest_phone" validate:"omitempty,min=5"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults     int    `json:"adults" validate:"required,min=1"`
	Children   int    `json:"children" validate:"min=0"`
}

type transitionRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createHotelRequest struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
	Timezone string `json:"timezone" validate:"omitempty"`
}

type roomRequest struct {
	HotelID       int64                 `json:"hotel_id" validate:"required"`
	Number        string                `json:"number" validate:"required"`
	Capacity      int                   `json:"capacity" validate:"required,min=1"`
	PriceCents    int64                 `json:"price_cents" validate:"min=0"`
	Status        string                `json:"status" validate:"omitempty,oneof=available occupied maintenance inactive"`
	MonthlyPrices []models.MonthlyPrice `json:"monthly_prices" validate:"omitempty,dive"`
	SpecialPrices []models.SpecialPrice `json:"special_prices" validate:"omitempty,dive"`
}

type occupancyReportRequest struct {
	HotelID int64  `json:"hotel_id" validate:"required"`
	Start   string `json:"start" validate:"required,datetime=2006-01-02"`
	End     string `json:"end" validate:"required,datetime=2006-01-02"`
}

// parseDay parses a YYYY-MM-DD string already validated by the datetime tag.
func parseDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed on %s", e.Field(), e.Tag())
		}
		return err
	}
	return nil
}
