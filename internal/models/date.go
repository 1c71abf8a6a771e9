package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the layout used for every date in facts documents and output datasets
const DateLayout = "2006-01-02"

// Date is a calendar date that marshals as "YYYY-MM-DD" and unmarshals from either
// that form or an RFC3339 timestamp
type Date struct {
	time.Time
}

// NewDate builds a UTC midnight Date
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String renders the date as "YYYY-MM-DD"
func (d Date) String() string {
	return d.Format(DateLayout)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	// Try parsing as RFC3339 full timestamp first
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		d.Time = t.UTC()
		return nil
	}

	t, err = time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}
