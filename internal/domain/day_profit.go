package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the textual form of a calendar day, e.g. "2024/03/15".
const DayLayout = "2006/01/02"

// DayProfit is the summed fees of every session attributed to one calendar day.
type DayProfit struct {
	ID       string
	Date     time.Time // midnight UTC
	Currency Currency
	Profit   decimal.Decimal
}

// DayOf returns the calendar date of t as observed in loc, normalised to midnight UTC.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a "yyyy/mm/dd" string into a calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// FormatDay renders a calendar date as "yyyy/mm/dd".
func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}
