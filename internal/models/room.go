package models

import "time"

// MonthlyPrice overrides the base nightly rate for a month range.
// Months are 1-12, the range is inclusive and does not wrap the year.
type MonthlyPrice struct {
	StartMonth int   `json:"start_month" yaml:"start_month"`
	EndMonth   int   `json:"end_month" yaml:"end_month"`
	PriceCents int64 `json:"price_cents" yaml:"price_cents"`
}

// SpecialPrice overrides the nightly rate for a day-granularity calendar
// range. The range may wrap the year boundary (e.g. Dec 20 - Jan 5).
type SpecialPrice struct {
	StartMonth int   `json:"start_month" yaml:"start_month"`
	StartDay   int   `json:"start_day" yaml:"start_day"`
	EndMonth   int   `json:"end_month" yaml:"end_month"`
	EndDay     int   `json:"end_day" yaml:"end_day"`
	PriceCents int64 `json:"price_cents" yaml:"price_cents"`
}

type Room struct {
	ID            int64          `json:"id" yaml:"id"`
	HotelID       int64          `json:"hotel_id" yaml:"hotel_id"`
	Number        string         `json:"number" yaml:"number"`
	Capacity      int            `json:"capacity" yaml:"capacity"`
	PriceCents    int64          `json:"price_cents" yaml:"price_cents"`
	Status        string         `json:"status" yaml:"status"`
	IsActive      bool           `json:"is_active" yaml:"is_active"`
	MonthlyPrices []MonthlyPrice `json:"monthly_prices" yaml:"monthly_prices"`
	SpecialPrices []SpecialPrice `json:"special_prices" yaml:"special_prices"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" yaml:"updated_at"`
}
