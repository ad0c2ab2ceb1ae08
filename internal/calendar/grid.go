package calendar

import (
	"time"

	"webcal/internal/model"
)

// Cell is one day of a grid together with the events that start on it.
// Cells are rebuilt on every call and never cached.
type Cell struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Events  []model.Event
}

// Week is one row of a month grid.
type Week []Cell

// Cells buckets events into the given days.
func Cells(days []time.Time, events []model.Event, now time.Time) []Cell {
	cells := make([]Cell, 0, len(days))
	for _, d := range days {
		cells = append(cells, Cell{
			Date:    d,
			InMonth: true,
			Today:   SameDay(d, now),
			Events:  EventsOnDay(events, d),
		})
	}
	return cells
}

// MonthGrid returns the month view of ref as rows of seven cells. Cells of
// the leading and trailing adjacent-month days have InMonth unset.
func MonthGrid(ref time.Time, weekStart time.Weekday, events []model.Event, now time.Time) []Week {
	cells := Cells(DaysForViewFrom(ref, model.Month, weekStart), events, now)

	weeks := make([]Week, 0, len(cells)/7)
	for i := 0; i+7 <= len(cells); i += 7 {
		row := Week(cells[i : i+7 : i+7])
		for j := range row {
			row[j].InMonth = row[j].Date.Month() == ref.Month() && row[j].Date.Year() == ref.Year()
		}
		weeks = append(weeks, row)
	}
	return weeks
}
