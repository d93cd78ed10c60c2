package dbx

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timeLayouts are the textual timestamp forms SQLite may hand back.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time scans a timestamp column whether the driver delivers time.Time
// (pgx, sqlite with a DATETIME declared type) or text (sqlite expressions).
type Time struct {
	time.Time
}

func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("dbx.Time: cannot scan %T", src)
	}
}

func (t Time) Value() (driver.Value, error) {
	return t.Time, nil
}

func (t *Time) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("dbx.Time: unrecognised timestamp %q", s)
}
