package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid payroll period")

// Period identifies one payroll cycle. Its canonical text form is "March 2025".
type Period struct {
	Month time.Month
	Year  int
}

// NewPeriod rejects months outside 1..12 and years below 1 instead of normalizing them.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// ParsePeriod parses "<FullMonthName> <YYYY>". Month names are matched case-insensitively.
func ParsePeriod(s string) (Period, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}

	month := 0
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(fields[0], m.String()) {
			month = int(m)
			break
		}
	}
	if month == 0 {
		return Period{}, fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, fields[0])
	}

	if len(fields[1]) != 4 {
		return Period{}, fmt.Errorf("%w: year must have 4 digits", ErrInvalidPeriod)
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	return NewPeriod(month, year)
}

func (p Period) String() string {
	return fmt.Sprintf("%s %04d", p.Month.String(), p.Year)
}

func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

// Start returns the first day of the period at 00:00 UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period at 00:00 UTC.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) Previous() Period {
	prev := p.Start().AddDate(0, -1, 0)
	return Period{Month: prev.Month(), Year: prev.Year()}
}

func (p Period) TotalCalendarDays() int {
	return TotalCalendarDays(p.Month, p.Year)
}

func (p Period) WorkingWeekdays() int {
	return WorkingWeekdays(p.Month, p.Year)
}

// PeriodOf returns the period containing t, evaluated in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// TotalCalendarDays is the per-day salary divisor: every day of the month, weekends included.
func TotalCalendarDays(month time.Month, year int) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WorkingWeekdays counts Monday through Friday dates in the month.
func WorkingWeekdays(month time.Month, year int) int {
	total := TotalCalendarDays(month, year)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()

	count := (total / 7) * 5
	for i := 0; i < total%7; i++ {
		wd := (first + time.Weekday(i)) % 7
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func WeekendDays(month time.Month, year int) int {
	return TotalCalendarDays(month, year) - WorkingWeekdays(month, year)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
