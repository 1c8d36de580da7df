package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONTime wraps time.Time so we can control both JSON un/marshaling and
// SQL driver encoding. The marketplace clients send timestamps in a few
// shapes (RFC3339, no-timezone, bare YYYY-MM-DD due dates), all accepted.
type JSONTime time.Time

var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (jt *JSONTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*jt = JSONTime(time.Time{})
		return nil
	}
	for _, layout := range jsonTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*jt = JSONTime(t)
			return nil
		}
	}
	return fmt.Errorf("JSONTime.UnmarshalJSON: cannot parse %q", s)
}

// MarshalJSON always emits full RFC3339.
func (jt JSONTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(jt).Format(time.RFC3339))
}

// Value implements driver.Valuer so GORM/pgx can bind a TIMESTAMPTZ.
func (jt JSONTime) Value() (driver.Value, error) {
	return time.Time(jt), nil
}

// Scan implements sql.Scanner for reading TIMESTAMPTZ back.
func (jt *JSONTime) Scan(src interface{}) error {
	if src == nil {
		*jt = JSONTime(time.Time{})
		return nil
	}
	switch v := src.(type) {
	case time.Time:
		*jt = JSONTime(v)
		return nil
	case []byte:
		return jt.parseDriverString(string(v))
	case string:
		return jt.parseDriverString(v)
	default:
		return fmt.Errorf("JSONTime.Scan: unsupported type %T", src)
	}
}

func (jt *JSONTime) parseDriverString(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("JSONTime.Scan: parse %q: %w", s, err)
	}
	*jt = JSONTime(t)
	return nil
}

func (jt JSONTime) Time() time.Time {
	return time.Time(jt)
}
