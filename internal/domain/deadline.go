package domain

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// EndOfDay turns a calendar date ("2006-01-02") into the last millisecond of
// that day in loc. An empty date means no deadline and returns nil.
func EndOfDay(date string, loc *time.Location) (*time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return &t, nil
}

// LocalDate extracts the calendar date of t in loc, for prefilling date inputs.
func LocalDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}
