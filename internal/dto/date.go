package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date accepts either a calendar date ("2023-01-01") or an RFC3339 timestamp.
type Date struct {
	time.Time
}

// DateOf wraps t.
func DateOf(t time.Time) *Date {
	return &Date{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// UTCPtr returns the date in UTC, or nil when d is nil.
func (d *Date) UTCPtr() *time.Time {
	if d == nil {
		return nil
	}
	utc := d.Time.UTC()
	return &utc
}

func parseDate(raw string) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", raw)
	}
	return parsed, nil
}

// OptionalDate tells an omitted field apart from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalDate struct {
	Set   bool
	Value *Date
}

// UnmarshalJSON implements json.Unmarshaler. encoding/json calls it for null too.
func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var value Date
	if err := value.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value = &value
	return nil
}
