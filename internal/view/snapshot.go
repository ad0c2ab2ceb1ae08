package view

import (
	"time"

	"webcal/internal/calendar"
	"webcal/internal/model"
)

// Placed is an event together with its position in its day column.
type Placed struct {
	Event    model.Event
	Position calendar.Position
}

// Column is one visible day.
type Column struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Events  []Placed
}

// Snapshot is everything needed to draw the current state once.
type Snapshot struct {
	Title        string
	State        State
	WeekStart    time.Weekday
	Columns      []Column
	TodayVisible bool
	NowOffset    float64
	HourHeight   float64
}

// Weeks splits the columns into rows of seven. Day views yield a single
// short row.
func (s Snapshot) Weeks() [][]Column {
	var out [][]Column
	for i := 0; i < len(s.Columns); i += 7 {
		end := i + 7
		if end > len(s.Columns) {
			end = len(s.Columns)
		}
		out = append(out, s.Columns[i:end])
	}
	return out
}

// Title is the header label for the current state.
func (c *Controller) Title() string {
	return Title(c.state)
}

func Title(s State) string {
	if s.Granularity == model.Day {
		return s.ReferenceDate.Format("January 2, 2006")
	}
	return s.ReferenceDate.Format("January 2006")
}

// Render projects the current state and the store contents into a
// Snapshot. Nothing is cached between calls.
func (c *Controller) Render(m calendar.Mapper) Snapshot {
	return Render(c.state, c.weekStart, c.store.All(), c.now(), m)
}

// Render is the stateless form of Controller.Render.
func Render(st State, weekStart time.Weekday, events []model.Event, now time.Time, m calendar.Mapper) Snapshot {
	var cells []calendar.Cell
	if st.Granularity == model.Month {
		for _, w := range calendar.MonthGrid(st.ReferenceDate, weekStart, events, now) {
			cells = append(cells, w...)
		}
	} else {
		cells = calendar.Cells(calendar.DaysForViewFrom(st.ReferenceDate, st.Granularity, weekStart), events, now)
	}

	snap := Snapshot{
		Title:      Title(st),
		State:      st,
		WeekStart:  weekStart,
		Columns:    make([]Column, 0, len(cells)),
		NowOffset:  m.CurrentTimeOffset(now),
		HourHeight: m.HourHeight,
	}
	for _, cell := range cells {
		col := Column{
			Date:    cell.Date,
			InMonth: cell.InMonth,
			Today:   cell.Today,
			Events:  make([]Placed, 0, len(cell.Events)),
		}
		for _, e := range cell.Events {
			col.Events = append(col.Events, Placed{Event: e, Position: m.Layout(e)})
		}
		if cell.Today {
			snap.TodayVisible = true
		}
		snap.Columns = append(snap.Columns, col)
	}
	return snap
}
