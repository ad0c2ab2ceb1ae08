package store

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcal/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.Local)
}

func seedEvent() model.Event {
	return model.Event{
		ID:    "1",
		Title: "Team Meeting",
		Start: at(10, 0),
		End:   at(11, 0),
		Color: model.Blue,
	}
}

// sequence returns a generator yielding the given ids in order, then
// numbered fallbacks.
func sequence(ids ...string) IDGenerator {
	n := 0
	return func() string {
		n++
		if n <= len(ids) {
			return ids[n-1]
		}
		return "gen-" + strconv.Itoa(n)
	}
}

func TestStore_AddAssignsFreshID(t *testing.T) {
	t.Parallel()

	s := New(nil, seedEvent())

	e := s.Add(model.Draft{Title: "X", Start: at(9, 0), End: at(9, 30), Color: model.Red})

	assert.Equal(t, 2, s.Len())
	assert.NotEmpty(t, e.ID)
	assert.NotEqual(t, "1", e.ID)
	assert.Equal(t, "X", e.Title)
	assert.Equal(t, model.Red, e.Color)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, e, all[1])
}

func TestStore_AddSkipsCollidingIDs(t *testing.T) {
	t.Parallel()

	s := New(sequence("1", "", "1", "fresh"), seedEvent())

	e := s.Add(model.Draft{Title: "X"})
	assert.Equal(t, "fresh", e.ID)
}

func TestStore_AddFallsBackWhenGeneratorIsStuck(t *testing.T) {
	t.Parallel()

	calls := 0
	stuck := func() string {
		calls++
		return "1"
	}
	s := New(stuck, seedEvent())

	a := s.Add(model.Draft{Title: "A"})
	b := s.Add(model.Draft{Title: "B"})

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, "1", a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2*maxIDAttempts, calls)
	assert.Equal(t, 3, s.Len())

	empty := New(func() string { return "" })
	assert.NotEmpty(t, empty.Add(model.Draft{Title: "C"}).ID)
}

func TestStore_AddIgnoresDraftID(t *testing.T) {
	t.Parallel()

	s := New(sequence("a"))
	e := s.Add(model.Draft{ID: "caller-chosen", Title: "X"})
	assert.Equal(t, "a", e.ID)
}

func TestStore_Update(t *testing.T) {
	t.Parallel()

	s := New(nil, seedEvent(), model.Event{ID: "2", Title: "Lunch"})

	changed := seedEvent()
	changed.Title = "Renamed"
	changed.Color = model.Green
	changed.Start = at(12, 0)
	s.Update(changed)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, changed, all[0])
	assert.Equal(t, "2", all[1].ID)
}

func TestStore_UpdateUnknownIsNoop(t *testing.T) {
	t.Parallel()

	s := New(nil, seedEvent())
	before := s.All()

	s.Update(model.Event{ID: "missing", Title: "ghost"})

	assert.Equal(t, before, s.All())
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	s := New(nil, seedEvent(), model.Event{ID: "2"})

	s.Remove("1")
	after := s.All()
	require.Len(t, after, 1)
	assert.Equal(t, "2", after[0].ID)

	s.Remove("1")
	assert.Equal(t, after, s.All())
}

func TestStore_AllReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New(nil, seedEvent())
	all := s.All()
	all[0].Title = "mutated"

	got, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Team Meeting", got.Title)

	_, ok = s.Get("nope")
	assert.False(t, ok)
}

func TestStore_SeedIsCopied(t *testing.T) {
	t.Parallel()

	seed := []model.Event{seedEvent()}
	s := New(nil, seed...)
	seed[0].Title = "mutated"

	got, _ := s.Get("1")
	assert.Equal(t, "Team Meeting", got.Title)
}
