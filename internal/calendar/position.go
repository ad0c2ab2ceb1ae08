package calendar

import (
	"time"

	"webcal/internal/model"
)

const (
	// DefaultHourHeight is the height of one hour in a day column.
	DefaultHourHeight = 64.0
	// DefaultMinExtent keeps zero-length and inverted events clickable.
	DefaultMinExtent = 20.0
)

// Position is the vertical placement of an event in a day column, in the
// same units as Mapper.HourHeight.
type Position struct {
	Offset float64 `json:"offset"`
	Extent float64 `json:"extent"`
}

// Mapper converts times of day into offsets along a day column.
type Mapper struct {
	HourHeight float64
	MinExtent  float64
}

func DefaultMapper() Mapper {
	return Mapper{HourHeight: DefaultHourHeight, MinExtent: DefaultMinExtent}
}

// Layout places e in its start day's column. The extent never drops below
// MinExtent, including when End is at or before Start.
func (m Mapper) Layout(e model.Event) Position {
	offset := minutesSinceMidnight(e.Start) / 60 * m.HourHeight
	extent := minutesBetween(e.Start, e.End) / 60 * m.HourHeight
	if extent < m.MinExtent {
		extent = m.MinExtent
	}
	return Position{Offset: offset, Extent: extent}
}

// CurrentTimeOffset is the offset of the "now" line for the given instant.
func (m Mapper) CurrentTimeOffset(now time.Time) float64 {
	return minutesSinceMidnight(now) / 60 * m.HourHeight
}

// minutesSinceMidnight reads the wall clock, so DST transitions never shift
// an event inside its column. Seconds are dropped.
func minutesSinceMidnight(t time.Time) float64 {
	return float64(t.Hour()*60 + t.Minute())
}

// minutesBetween is the whole-minute wall-clock distance from a to b,
// negative when b is before a.
func minutesBetween(a, b time.Time) float64 {
	return float64(int64(naive(b).Sub(naive(a)) / time.Minute))
}

// naive re-reads t's wall clock as UTC so differences ignore zone offsets.
func naive(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}
