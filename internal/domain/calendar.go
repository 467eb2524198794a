package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Date is a calendar day without time of day or zone.
type Date struct {
	time.Time
}

// ParseDate parses a strict YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil || len(value) != len(DateLayout) {
		return Date{}, fmt.Errorf("fecha inválida %q, se espera YYYY-MM-DD", value)
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from a time value, dropping the clock part.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Equal compares calendar days.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock is a time of day with second precision.
type Clock struct {
	seconds int
}

// ParseClock parses a strict HH:MM:SS value.
func ParseClock(value string) (Clock, error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil || len(value) != len(ClockLayout) {
		return Clock{}, fmt.Errorf("hora inválida %q, se espera HH:MM:SS", value)
	}
	return NewClock(t.Hour(), t.Minute(), t.Second()), nil
}

// NewClock builds a Clock from its components.
func NewClock(hour, minute, second int) Clock {
	return Clock{seconds: hour*3600 + minute*60 + second}
}

// ClockFromDuration builds a Clock from the offset since midnight.
func ClockFromDuration(d time.Duration) Clock {
	return Clock{seconds: int(d / time.Second)}
}

// SinceMidnight returns the offset of c from midnight.
func (c Clock) SinceMidnight() time.Duration {
	return time.Duration(c.seconds) * time.Second
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.seconds/3600, (c.seconds/60)%60, c.seconds%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
