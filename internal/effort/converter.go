// Package effort converts effort figures between weeks, days and hours.
// Conversions are linear and never round; formatting is the caller's job.
package effort

import (
	"fmt"
	"strings"
)

const (
	DefaultDaysPerWeek = 5
	HoursPerDay        = 8
)

type Unit string

const (
	Weeks Unit = "weeks"
	Days  Unit = "days"
	Hours Unit = "hours"
)

// ParseUnit accepts singular, plural and one-letter unit names.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "wk", "week", "weeks":
		return Weeks, nil
	case "d", "day", "days":
		return Days, nil
	case "h", "hr", "hour", "hours":
		return Hours, nil
	}
	return "", fmt.Errorf("unknown effort unit %q", s)
}

// Converter is parameterized by the working days in a week. A zero
// DaysPerWeek means DefaultDaysPerWeek.
type Converter struct {
	DaysPerWeek float64
}

var Default = Converter{DaysPerWeek: DefaultDaysPerWeek}

func (c Converter) daysPerWeek() float64 {
	if c.DaysPerWeek <= 0 {
		return DefaultDaysPerWeek
	}
	return c.DaysPerWeek
}

func (c Converter) WeeksToDays(w float64) float64  { return w * c.daysPerWeek() }
func (c Converter) DaysToWeeks(d float64) float64  { return d / c.daysPerWeek() }
func (c Converter) WeeksToHours(w float64) float64 { return w * c.daysPerWeek() * HoursPerDay }
func (c Converter) HoursToWeeks(h float64) float64 { return h / (c.daysPerWeek() * HoursPerDay) }
func (c Converter) DaysToHours(d float64) float64  { return d * HoursPerDay }
func (c Converter) HoursToDays(h float64) float64  { return h / HoursPerDay }

// Convert moves v from one unit to another.
func (c Converter) Convert(v float64, from, to Unit) (float64, error) {
	var weeks float64
	switch from {
	case Weeks:
		weeks = v
	case Days:
		weeks = c.DaysToWeeks(v)
	case Hours:
		weeks = c.HoursToWeeks(v)
	default:
		return 0, fmt.Errorf("unknown effort unit %q", from)
	}
	switch to {
	case Weeks:
		return weeks, nil
	case Days:
		return c.WeeksToDays(weeks), nil
	case Hours:
		return c.WeeksToHours(weeks), nil
	}
	return 0, fmt.Errorf("unknown effort unit %q", to)
}

func WeeksToDays(w float64) float64  { return Default.WeeksToDays(w) }
func DaysToWeeks(d float64) float64  { return Default.DaysToWeeks(d) }
func WeeksToHours(w float64) float64 { return Default.WeeksToHours(w) }
func HoursToWeeks(h float64) float64 { return Default.HoursToWeeks(h) }
func DaysToHours(d float64) float64  { return Default.DaysToHours(d) }
func HoursToDays(h float64) float64  { return Default.HoursToDays(h) }
