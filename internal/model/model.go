package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownColor       = errors.New("unknown color")
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// Color is the closed set of tags an event can carry. It only affects how
// the event is drawn, never where.
type Color int

const (
	Blue Color = iota
	Red
	Green
	Yellow
	Purple
	Indigo
	Pink
)

// DefaultColor is used for new drafts and for imported events whose tag is
// missing or unknown.
const DefaultColor = Blue

var colorNames = [...]string{
	Blue:   "blue",
	Red:    "red",
	Green:  "green",
	Yellow: "yellow",
	Purple: "purple",
	Indigo: "indigo",
	Pink:   "pink",
}

// Colors returns every color in declaration order.
func Colors() []Color {
	out := make([]Color, len(colorNames))
	for i := range colorNames {
		out[i] = Color(i)
	}
	return out
}

func (c Color) Valid() bool {
	return c >= Blue && int(c) < len(colorNames)
}

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// ParseColor accepts the lowercase tag name, ignoring case and surrounding
// whitespace.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range colorNames {
		if name == s {
			return Color(i), nil
		}
	}
	return DefaultColor, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Granularity is the active calendar zoom level.
type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
	Day   Granularity = "day"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Month, Week, Day:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

func (g *Granularity) UnmarshalText(b []byte) error {
	v, err := ParseGranularity(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Event is a single scheduled occurrence. Start and End are naive wall-clock
// values: only their calendar date and time of day are meaningful.
// End >= Start is expected but not enforced here.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       Color
}

// Draft is the uncommitted field set held by the editor. An empty ID means
// the draft describes a new event.
type Draft struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       Color
}

func (d Draft) IsNew() bool {
	return d.ID == ""
}

// Event materializes the draft under the given id.
func (d Draft) Event(id string) Event {
	return Event{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Start:       d.Start,
		End:         d.End,
		Color:       d.Color,
	}
}

func DraftFromEvent(e Event) Draft {
	return Draft{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Color:       e.Color,
	}
}
