package repo

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// flexTime читает результат агрегата (MAX(updated_at) и т.п.).
// SQLite отдаёт такие значения строкой, PostgreSQL — time.Time.
type flexTime struct {
	Time  time.Time
	Valid bool
}

var flexTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *flexTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case int64:
		t.Time, t.Valid = time.Unix(v, 0), true
		return nil
	}
	return fmt.Errorf("flexTime: unsupported type %T", src)
}

func (t *flexTime) parse(s string) error {
	for _, layout := range flexTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("flexTime: cannot parse %q", s)
}

func (t flexTime) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time, nil
}
