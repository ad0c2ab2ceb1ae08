package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcal/internal/calendar"
	"webcal/internal/model"
	"webcal/internal/store"
)

var fixedNow = time.Date(2024, 3, 15, 14, 20, 0, 0, time.UTC)

func newTestController(t *testing.T, opts ...Option) (*Controller, *store.Store) {
	t.Helper()

	s := store.New(nil, model.Event{
		ID:    "1",
		Title: "Team Meeting",
		Start: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC),
		Color: model.Blue,
	})
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewController(s, opts...), s
}

func TestController_Defaults(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	st := c.State()
	assert.Equal(t, model.Month, st.Granularity)
	assert.Equal(t, fixedNow, st.ReferenceDate)
	assert.Equal(t, time.Sunday, c.WeekStart())

	_, open := c.Editor()
	assert.False(t, open)
}

func TestController_SetGranularityKeepsReference(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	before := c.State().ReferenceDate

	for _, g := range []model.Granularity{model.Week, model.Day, model.Month} {
		c.SetGranularity(g)
		assert.Equal(t, g, c.State().Granularity)
		assert.Equal(t, before, c.State().ReferenceDate)
	}
}

func TestController_Navigation(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	c.SetReferenceDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	c.GoNext()
	assert.Equal(t, "2024-02-29", c.State().ReferenceDate.Format("2006-01-02"))
	c.GoPrev()
	assert.Equal(t, "2024-01-29", c.State().ReferenceDate.Format("2006-01-02"))

	c.SetGranularity(model.Week)
	c.GoNext()
	assert.Equal(t, "2024-02-05", c.State().ReferenceDate.Format("2006-01-02"))

	c.SetGranularity(model.Day)
	c.GoPrev()
	assert.Equal(t, "2024-02-04", c.State().ReferenceDate.Format("2006-01-02"))

	c.GoToToday()
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), c.State().ReferenceDate)
	assert.Equal(t, model.Day, c.State().Granularity)
}

func TestController_DaysAndTodayVisible(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t, WithGranularity(model.Week), WithWeekStart(time.Monday))
	days := c.Days()
	require.Len(t, days, 7)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.True(t, c.TodayVisible())

	c.GoNext()
	assert.False(t, c.TodayVisible())
}

func TestController_RequestCreate(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	slot := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

	d := c.RequestCreate(slot)
	assert.True(t, d.IsNew())
	assert.Equal(t, slot, d.Start)
	assert.Equal(t, slot.Add(time.Hour), d.End)
	assert.Equal(t, model.Blue, d.Color)
	assert.Empty(t, d.Title)

	open, ok := c.Editor()
	assert.True(t, ok)
	assert.Equal(t, d, open)
}

func TestController_RequestEditCopiesFields(t *testing.T) {
	t.Parallel()

	c, s := newTestController(t)
	e, ok := s.Get("1")
	require.True(t, ok)

	d := c.RequestEdit(e)
	assert.Equal(t, model.DraftFromEvent(e), d)

	d.Title = "changed in editor"
	got, _ := s.Get("1")
	assert.Equal(t, "Team Meeting", got.Title)
}

func TestController_CommitNewAdds(t *testing.T) {
	t.Parallel()

	c, s := newTestController(t)
	d := c.RequestCreate(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	d.Title = "X"
	d.End = d.Start.Add(30 * time.Minute)
	d.Color = model.Red

	e := c.Commit(d)

	assert.Equal(t, 2, s.Len())
	assert.NotEqual(t, "1", e.ID)
	assert.NotEmpty(t, e.ID)
	_, open := c.Editor()
	assert.False(t, open)
}

func TestController_CommitExistingUpdates(t *testing.T) {
	t.Parallel()

	c, s := newTestController(t)
	e, _ := s.Get("1")
	d := c.RequestEdit(e)
	d.Title = "Retro"
	d.Color = model.Pink

	got := c.Commit(d)

	assert.Equal(t, "1", got.ID)
	assert.Equal(t, 1, s.Len())
	all := s.All()
	assert.Equal(t, "Retro", all[0].Title)
	assert.Equal(t, model.Pink, all[0].Color)
}

func TestController_Discard(t *testing.T) {
	t.Parallel()

	c, s := newTestController(t)
	e, _ := s.Get("1")
	c.RequestEdit(e)

	c.Discard("1")
	assert.Zero(t, s.Len())
	_, open := c.Editor()
	assert.False(t, open)

	c.Discard("1")
	assert.Zero(t, s.Len())
}

func TestController_Render(t *testing.T) {
	t.Parallel()

	c, _ := newTestController(t)
	c.SetReferenceDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	snap := c.Render(calendar.DefaultMapper())
	assert.Equal(t, "March 2024", snap.Title)
	require.Len(t, snap.Columns, 42)
	assert.True(t, snap.TodayVisible)
	assert.Len(t, snap.Weeks(), 6)

	var found bool
	for _, col := range snap.Columns {
		if col.Date.Format("2006-01-02") == "2024-03-10" {
			require.Len(t, col.Events, 1)
			assert.Equal(t, calendar.Position{Offset: 640, Extent: 64}, col.Events[0].Position)
			found = true
		}
	}
	assert.True(t, found)

	c.SetGranularity(model.Day)
	c.SetReferenceDate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	snap = c.Render(calendar.DefaultMapper())
	assert.Equal(t, "March 10, 2024", snap.Title)
	require.Len(t, snap.Columns, 1)
	assert.False(t, snap.TodayVisible)
	require.Len(t, snap.Columns[0].Events, 1)
	assert.Len(t, snap.Weeks(), 1)
}

func TestController_RenderIsNotCached(t *testing.T) {
	t.Parallel()

	c, s := newTestController(t, WithGranularity(model.Day))
	c.SetReferenceDate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	first := c.Render(calendar.DefaultMapper())
	require.Len(t, first.Columns[0].Events, 1)

	s.Remove("1")
	second := c.Render(calendar.DefaultMapper())
	assert.Empty(t, second.Columns[0].Events)
}
