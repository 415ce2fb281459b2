package datenorm

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// InstantLayout matches what browsers emit for Date.toISOString.
const InstantLayout = "2006-01-02T15:04:05.000Z07:00"

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Instant is a UTC timestamp that may be absent. Missing and malformed
// values decode to an invalid Instant instead of failing the whole payload.
type Instant struct {
	Time  time.Time
	Valid bool
}

// At wraps t as a valid instant.
func At(t time.Time) Instant {
	return Instant{Time: t.UTC(), Valid: true}
}

// ParseInstant accepts RFC 3339 and zone-less ISO forms; zone-less values
// are read as UTC, the backend's storage zone.
func ParseInstant(s string) (Instant, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t), true
		}
	}
	return Instant{}, false
}

func (i Instant) String() string {
	if !i.Valid {
		return ""
	}
	return i.Time.UTC().Format(InstantLayout)
}

// MarshalJSON writes null for invalid instants.
func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time.UTC().Format(InstantLayout))
}

// UnmarshalJSON never fails on content: anything that is not a parseable
// timestamp string becomes an invalid instant.
func (i *Instant) UnmarshalJSON(b []byte) error {
	*i = Instant{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if parsed, ok := ParseInstant(s); ok {
		*i = parsed
	}
	return nil
}
