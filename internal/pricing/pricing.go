// Package pricing resolves the nightly rate of a room from its calendar
// price overrides. Special prices win over monthly prices, monthly prices
// win over the base rate; within each list the first matching entry wins.
package pricing

import (
	"errors"
	"time"

	"reservio/internal/models"
)

var ErrInvalidStay = errors.New("check-out must be after check-in")

// NightlyRate returns the rate for one night starting on date.
// Time-of-day and year are ignored; only (month, day) matter.
func NightlyRate(room *models.Room, date time.Time) int64 {
	month := int(date.Month())
	day := date.Day()

	for _, sp := range room.SpecialPrices {
		if specialMatches(sp, month, day) {
			return sp.PriceCents
		}
	}

	for _, mp := range room.MonthlyPrices {
		if mp.StartMonth <= month && month <= mp.EndMonth {
			return mp.PriceCents
		}
	}

	return room.PriceCents
}

// specialMatches reports whether (month, day) falls within the inclusive
// range of sp. When the start is after the end lexicographically the range
// wraps the year boundary and a date matches if it is >= start OR <= end.
func specialMatches(sp models.SpecialPrice, month, day int) bool {
	afterStart := month > sp.StartMonth || (month == sp.StartMonth && day >= sp.StartDay)
	beforeEnd := month < sp.EndMonth || (month == sp.EndMonth && day <= sp.EndDay)

	wraps := sp.StartMonth > sp.EndMonth ||
		(sp.StartMonth == sp.EndMonth && sp.StartDay > sp.EndDay)
	if wraps {
		return afterStart || beforeEnd
	}
	return afterStart && beforeEnd
}

// Night is one line of a stay quote.
type Night struct {
	Date       time.Time `json:"date"`
	PriceCents int64     `json:"price_cents"`
}

// Quote prices every night in [checkIn, checkOut).
func Quote(room *models.Room, checkIn, checkOut time.Time) ([]Night, error) {
	checkIn = truncateDay(checkIn)
	checkOut = truncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidStay
	}

	var nights []Night
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, Night{Date: d, PriceCents: NightlyRate(room, d)})
	}
	return nights, nil
}

// StayTotal sums NightlyRate over every night in [checkIn, checkOut).
func StayTotal(room *models.Room, checkIn, checkOut time.Time) (int64, error) {
	nights, err := Quote(room, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, n := range nights {
		total += n.PriceCents
	}
	return total, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
