// Package delivery enumerates the delivery dates a customer may pick.
package delivery

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultMinLeadDays = 2
	DefaultCount       = 6
	DefaultTimezone    = "America/Bogota"
)

// Option is one selectable delivery date.
type Option struct {
	Date  time.Time // midnight in the business timezone
	ISO   string    // 2006-01-02
	Label string    // "Martes 20 de octubre"
}

// Policy enumerates delivery dates: the first candidate is MinLeadDays after
// today in Location, Excluded weekdays are skipped, and Count dates are offered.
type Policy struct {
	Location    *time.Location
	MinLeadDays int
	Count       int
	Excluded    time.Weekday
}

// NewPolicy returns the standard policy for the named timezone.
func NewPolicy(timezone string) (Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return Policy{
		Location:    loc,
		MinLeadDays: DefaultMinLeadDays,
		Count:       DefaultCount,
		Excluded:    time.Sunday,
	}, nil
}

// Options lists the selectable dates in ascending order for the calendar
// day that now falls on in the business timezone.
func (p Policy) Options(now time.Time) []Option {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, p.MinLeadDays)

	opts := make([]Option, 0, p.Count)
	for len(opts) < p.Count {
		if day.Weekday() != p.Excluded {
			opts = append(opts, Option{
				Date:  day,
				ISO:   day.Format(time.DateOnly),
				Label: Label(day),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return opts
}

var (
	weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	months   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// Label renders t as a Spanish weekday, day and month.
func Label(t time.Time) string {
	// Casers keep state and cannot be shared between goroutines.
	weekday := cases.Title(language.Spanish).String(weekdays[t.Weekday()])
	return fmt.Sprintf("%s %d de %s", weekday, t.Day(), months[t.Month()-1])
}
