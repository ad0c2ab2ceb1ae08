package calendar

import (
	"sort"
	"time"

	"webcal/internal/model"
)

// EventsOnDay returns the events whose start falls on day's calendar date,
// ordered by start time. End is ignored, so an event that runs past
// midnight is only listed on the day it starts.
func EventsOnDay(events []model.Event, day time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, e := range events {
		if SameDay(e.Start, day) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return minutesSinceMidnight(out[i].Start) < minutesSinceMidnight(out[j].Start)
	})
	return out
}
