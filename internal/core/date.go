package core

import (
	"errors"
	"time"
)

const isoDate = "2006-01-02"

// Date is a calendar date carried in ISO form. The zero value is "no date".
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseISODate parses a "2006-01-02" string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as "2006-01-02".
func (d Date) ISO() string {
	return d.Format(isoDate)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("date must be a JSON string")
	}
	parsed, err := ParseISODate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
