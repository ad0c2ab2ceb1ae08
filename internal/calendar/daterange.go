// Package calendar holds the pure date arithmetic behind every view: which
// days a view shows, which events land on a day, and where an event sits in
// a day column.
//
// There is no timezone model. Every value is treated as a naive wall-clock
// time and only its own calendar fields (year, month, day, hour, minute)
// are read, so mixing locations never shifts an event to another day.
package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"webcal/internal/model"
)

// DefaultWeekStart is the first column of week and month views.
const DefaultWeekStart = time.Sunday

// StartOfDay returns the first instant of t's calendar date in t's
// location: midnight, or the end of the gap where a zone skips midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return At(y, m, d, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// At builds the wall-clock time y-m-d h:mi in loc. A wall time skipped by
// a clock change moves to the nearest instant on the same date, so the
// result always reports the requested date.
func At(y int, m time.Month, d, h, mi int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, h, mi, 0, 0, loc)
	want := civilDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))

	step := time.Minute
	if civilDate(t).After(want) {
		step = -time.Minute
	}
	// Gaps are at most a few hours wide; give up after a day.
	for i := 0; i < 24*60 && !civilDate(t).Equal(want); i++ {
		t = t.Add(step)
	}
	return t
}

// AddDays moves t by n calendar days, keeping its wall-clock time.
func AddDays(t time.Time, n int) time.Time {
	c := naive(t).AddDate(0, 0, n)
	return WallIn(c, t.Location())
}

// civilDate is t's calendar date as UTC midnight. UTC has no clock
// changes, so day arithmetic on it never skips or repeats a date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WallIn places the wall-clock fields of c, read in c's own location, in
// loc. Skipped wall times move as in At.
func WallIn(c time.Time, loc *time.Location) time.Time {
	y, m, d := c.Date()
	t := At(y, m, d, c.Hour(), c.Minute(), loc)
	if t.Hour() == c.Hour() && t.Minute() == c.Minute() {
		t = t.Add(time.Duration(c.Second())*time.Second + time.Duration(c.Nanosecond()))
	}
	return t
}

// StartOfWeek returns the start of the weekStart day on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := civilDate(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return WallIn(day.AddDate(0, 0, -diff), t.Location())
}

// EndOfWeek returns the start of the last day of the week containing t.
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := civilDate(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return WallIn(day.AddDate(0, 0, 6-diff), t.Location())
}

func StartOfMonth(t time.Time) time.Time {
	return At(t.Year(), t.Month(), 1, 0, 0, t.Location())
}

// EndOfMonth returns the start of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return At(t.Year(), t.Month(), DaysIn(t.Year(), t.Month()), 0, 0, t.Location())
}

// DaysIn returns the number of days in the given month (28–31).
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns every calendar day from start through end inclusive,
// each at StartOfDay in start's location, ascending. An end before start
// yields nil.
func DaysBetween(start, end time.Time) []time.Time {
	loc := start.Location()
	from, to := civilDate(start), civilDate(end)
	if to.Before(from) {
		return nil
	}

	// The rule runs on UTC dates; each day is rebuilt in loc afterwards.
	var civil []time.Time
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: from,
		Until:   to,
	})
	if err == nil {
		civil = r.All()
	} else {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			civil = append(civil, d)
		}
	}

	out := make([]time.Time, len(civil))
	for i, c := range civil {
		out[i] = WallIn(c, loc)
	}
	return out
}

// DaysForView returns the days shown for the given granularity with weeks
// starting on Sunday.
func DaysForView(ref time.Time, g model.Granularity) []time.Time {
	return DaysForViewFrom(ref, g, DefaultWeekStart)
}

// DaysForViewFrom is DaysForView with an explicit first day of the week.
//
//   - day:   [ref at midnight]
//   - week:  the 7 days of the week containing ref
//   - month: whole weeks from the week of the 1st through the week of the
//     last day, so the length is always 28, 35 or 42
//
// Unknown granularities are treated as day.
func DaysForViewFrom(ref time.Time, g model.Granularity, weekStart time.Weekday) []time.Time {
	switch g {
	case model.Month:
		return DaysBetween(
			StartOfWeek(StartOfMonth(ref), weekStart),
			EndOfWeek(EndOfMonth(ref), weekStart),
		)
	case model.Week:
		return DaysBetween(StartOfWeek(ref, weekStart), EndOfWeek(ref, weekStart))
	default:
		return []time.Time{StartOfDay(ref)}
	}
}

// Advance moves ref by one unit of g in the direction of dir's sign. A zero
// dir returns ref unchanged.
//
// Month steps keep the time of day and clamp the day of month to the target
// month's length, so Jan 31 + 1 month is the last day of February.
func Advance(ref time.Time, g model.Granularity, dir int) time.Time {
	switch {
	case dir > 0:
		dir = 1
	case dir < 0:
		dir = -1
	default:
		return ref
	}

	switch g {
	case model.Month:
		return addMonthsClamped(ref, dir)
	case model.Week:
		return AddDays(ref, 7*dir)
	default:
		return AddDays(ref, dir)
	}
}

func addMonthsClamped(t time.Time, n int) time.Time {
	c := naive(t)
	first := time.Date(c.Year(), c.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := c.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return WallIn(time.Date(first.Year(), first.Month(), day,
		c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), time.UTC), t.Location())
}
