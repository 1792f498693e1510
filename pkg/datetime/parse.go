// Package datetime provides calendar month and date value types. Month
// arithmetic is done on (year, month) pairs so that stepping never drifts with
// variable month lengths.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/debt-payoff/pkg/constants"
)

const (
	// MonthLayout is the format for calendar months, e.g. "2024-01".
	MonthLayout = constants.MonthLayout

	// DateLayout is the format for calendar dates, e.g. "2024-01-15".
	DateLayout = constants.DateLayout
)

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Date is a calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewMonth returns the normalized month, so NewMonth(2024, 13) is 2025-01.
func NewMonth(year int, month time.Month) Month {
	index := year*12 + int(month) - 1
	return monthFromIndex(index)
}

func monthFromIndex(index int) Month {
	year := index / 12
	m := index % 12
	if m < 0 {
		m += 12
		year--
	}
	return Month{Year: year, Month: time.Month(m + 1)}
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// AddMonths returns the month offset by n months.
func (m Month) AddMonths(n int) Month {
	return monthFromIndex(m.index() + n)
}

// Next returns the following month.
func (m Month) Next() Month {
	return m.AddMonths(1)
}

// MonthsUntil returns the number of months from m to other; negative when
// other is earlier.
func (m Month) MonthsUntil(other Month) int {
	return other.index() - m.index()
}

// Compare returns -1, 0 or +1 depending on whether m is before, equal to or
// after other.
func (m Month) Compare(other Month) int {
	switch a, b := m.index(), other.index(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Before reports whether m is strictly before other.
func (m Month) Before(other Month) bool {
	return m.Compare(other) < 0
}

// After reports whether m is strictly after other.
func (m Month) After(other Month) bool {
	return m.Compare(other) > 0
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// DaysIn returns the number of days in the month.
func (m Month) DaysIn() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// OnDay returns the date in this month on the given day, clamped to the
// month's length.
func (m Month) OnDay(day int) Date {
	if day < 1 {
		day = 1
	}
	if last := m.DaysIn(); day > last {
		day = last
	}
	return Date{Year: m.Year, Month: m.Month, Day: day}
}

// String formats the month as "2006-01".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler. The zero month marshals as
// an empty string.
func (m Month) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthOf returns the calendar month containing the date.
func (d Date) MonthOf() Month {
	return Month{Year: d.Year, Month: d.Month}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time converts the date to midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as "2006-01-02".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler. The zero date marshals as
// an empty string.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseMonth parses a "2006-01" month.
func ParseMonth(value string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(value))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", value, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// ParseDate parses a "2006-01-02" date. A bare "2006-01" month is accepted and
// resolves to the first day of that month; RFC 3339 timestamps, as produced by
// some YAML and JSON encoders, are truncated to their date.
func ParseDate(value string) (Date, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, trimmed); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(MonthLayout, trimmed); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q: expected %s", value, DateLayout)
}

// MustParseDate parses a date and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// MustParseMonth parses a month and panics on error.
// This is intended for use in tests where the month string is known to be valid.
func MustParseMonth(value string) Month {
	m, err := ParseMonth(value)
	if err != nil {
		panic(err)
	}
	return m
}
