package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// asDate adapts a string destination for a DATE column. Depending on the
// DSN's parseTime setting the driver hands DATE values back either as bytes
// or as time.Time; both must land in the model as a plain YYYY-MM-DD string,
// since services parse and compare these fields textually.
func asDate(dest *string) dateScanner {
	return dateScanner{dest: dest}
}

type dateScanner struct {
	dest *string
}

func (s dateScanner) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s.dest = ""
	case time.Time:
		*s.dest = v.Format(dateLayout)
	case []byte:
		*s.dest = truncateToDate(string(v))
	case string:
		*s.dest = truncateToDate(v)
	default:
		return fmt.Errorf("cannot scan %T into a date column", value)
	}
	return nil
}

// asNullDate is asDate for nullable DATE columns.
func asNullDate(dest *sql.NullString) nullDateScanner {
	return nullDateScanner{dest: dest}
}

type nullDateScanner struct {
	dest *sql.NullString
}

func (s nullDateScanner) Scan(value interface{}) error {
	if value == nil {
		s.dest.String = ""
		s.dest.Valid = false
		return nil
	}
	s.dest.Valid = true
	return dateScanner{dest: &s.dest.String}.Scan(value)
}

// truncateToDate strips any time-of-day suffix ("2025-03-01 00:00:00",
// "2025-03-01T00:00:00Z") down to the date part.
func truncateToDate(v string) string {
	if len(v) > len(dateLayout) {
		return v[:len(dateLayout)]
	}
	return v
}
