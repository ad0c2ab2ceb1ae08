// Package view holds the navigation and editing state of one calendar
// session and projects it, together with the event store, into what a
// presentation layer draws.
package view

import (
	"time"

	"webcal/internal/calendar"
	appLog "webcal/internal/log"
	"webcal/internal/model"
	"webcal/internal/store"
)

// DefaultDraftDuration is the length of a freshly requested event.
const DefaultDraftDuration = time.Hour

// State is the navigational state of a session.
type State struct {
	ReferenceDate time.Time
	Granularity   model.Granularity
}

// Controller mediates navigation and create/update/delete requests.
//
// It is not safe for concurrent use; callers serving several goroutines
// must serialize access themselves.
type Controller struct {
	store     *store.Store
	now       func() time.Time
	weekStart time.Weekday

	state State

	draft      model.Draft
	editorOpen bool
}

type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithWeekStart(d time.Weekday) Option {
	return func(c *Controller) {
		c.weekStart = d
	}
}

func WithGranularity(g model.Granularity) Option {
	return func(c *Controller) {
		c.state.Granularity = g
	}
}

// NewController starts a session on today's date in month view unless the
// options say otherwise.
func NewController(s *store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:     s,
		now:       time.Now,
		weekStart: calendar.DefaultWeekStart,
		state:     State{Granularity: model.Month},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.ReferenceDate = c.now()
	return c
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) WeekStart() time.Weekday {
	return c.weekStart
}

func (c *Controller) Now() time.Time {
	return c.now()
}

func (c *Controller) SetGranularity(g model.Granularity) {
	c.state.Granularity = g
}

// SetReferenceDate jumps straight to t, as a date picker would.
func (c *Controller) SetReferenceDate(t time.Time) {
	c.state.ReferenceDate = t
}

func (c *Controller) GoToToday() {
	c.state.ReferenceDate = calendar.StartOfDay(c.now())
}

func (c *Controller) GoPrev() {
	c.state.ReferenceDate = calendar.Advance(c.state.ReferenceDate, c.state.Granularity, -1)
}

func (c *Controller) GoNext() {
	c.state.ReferenceDate = calendar.Advance(c.state.ReferenceDate, c.state.Granularity, 1)
}

// Days is the visible day range of the current state.
func (c *Controller) Days() []time.Time {
	return calendar.DaysForViewFrom(c.state.ReferenceDate, c.state.Granularity, c.weekStart)
}

// TodayVisible reports whether the current range contains today, which is
// when the current-time line should be drawn.
func (c *Controller) TodayVisible() bool {
	now := c.now()
	for _, d := range c.Days() {
		if calendar.SameDay(d, now) {
			return true
		}
	}
	return false
}

// RequestCreate opens the editor on a blank one-hour draft starting at date.
func (c *Controller) RequestCreate(date time.Time) model.Draft {
	c.draft = model.Draft{
		Start: date,
		End:   date.Add(DefaultDraftDuration),
		Color: model.DefaultColor,
	}
	c.editorOpen = true
	return c.draft
}

// RequestEdit opens the editor on a copy of e.
func (c *Controller) RequestEdit(e model.Event) model.Draft {
	c.draft = model.DraftFromEvent(e)
	c.editorOpen = true
	return c.draft
}

// Editor returns the open draft, if any.
func (c *Controller) Editor() (model.Draft, bool) {
	return c.draft, c.editorOpen
}

func (c *Controller) CloseEditor() {
	c.draft = model.Draft{}
	c.editorOpen = false
}

// Commit saves d: drafts carrying an id replace that event, the rest are
// added under a fresh id. The editor is closed either way.
func (c *Controller) Commit(d model.Draft) model.Event {
	defer c.CloseEditor()

	if d.IsNew() {
		e := c.store.Add(d)
		appLog.Info("event created", "id", e.ID, "title", e.Title)
		return e
	}

	e := d.Event(d.ID)
	c.store.Update(e)
	appLog.Info("event updated", "id", e.ID, "title", e.Title)
	return e
}

// Discard deletes the event with the given id and closes the editor.
func (c *Controller) Discard(id string) {
	defer c.CloseEditor()

	c.store.Remove(id)
	appLog.Info("event deleted", "id", id)
}
