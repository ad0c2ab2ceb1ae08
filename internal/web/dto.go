package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"webcal/internal/calendar"
	"webcal/internal/model"
	"webcal/internal/view"
)

// Wire layouts for naive times. Inputs may omit seconds, like an HTML
// datetime-local field, or carry a bare date.
const (
	naiveLayout = "2006-01-02T15:04:05"
	dateLayout  = "2006-01-02"
)

var inputLayouts = []string{naiveLayout, "2006-01-02T15:04", dateLayout}

// naiveTime is a zone-less wall-clock time on the wire. Parsed values live
// in time.Local.
type naiveTime time.Time

func parseNaive(s string) (time.Time, error) {
	return parseNaiveIn(s, time.Local)
}

// parseNaiveIn reads the wall-clock fields of s and places them in loc,
// keeping the written date even where loc skips that wall time.
func parseNaiveIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendar.WallIn(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want YYYY-MM-DDTHH:MM[:SS] or YYYY-MM-DD", s)
}

func (t naiveTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(naiveLayout))
}

func (t *naiveTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := parseNaive(s)
	if err != nil {
		return err
	}
	*t = naiveTime(v)
	return nil
}

// eventDTO is the JSON shape of an event and of an editor draft; drafts
// for new events have an empty id.
type eventDTO struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Start       naiveTime   `json:"start"`
	End         naiveTime   `json:"end"`
	Color       model.Color `json:"color"`
}

func toEventDTO(e model.Event) eventDTO {
	return eventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       naiveTime(e.Start),
		End:         naiveTime(e.End),
		Color:       e.Color,
	}
}

func toDraftDTO(d model.Draft) eventDTO {
	return toEventDTO(d.Event(d.ID))
}

func (d eventDTO) draft() model.Draft {
	return model.Draft{
		ID:          d.ID,
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Start:       time.Time(d.Start),
		End:         time.Time(d.End),
		Color:       d.Color,
	}
}

const maxTitleLen = 100

var errValidation = errors.New("invalid event")

// validateDraft enforces what the editor surface must guarantee before a
// commit reaches the controller.
func validateDraft(d model.Draft) error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", errValidation)
	}
	if len([]rune(d.Title)) > maxTitleLen {
		return fmt.Errorf("%w: title is too long (%d characters tops)", errValidation, maxTitleLen)
	}
	if d.Start.IsZero() || d.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", errValidation)
	}
	if d.End.Before(d.Start) {
		return fmt.Errorf("%w: end time must not be before start time", errValidation)
	}
	if !d.Color.Valid() {
		return fmt.Errorf("%w: %w", errValidation, model.ErrUnknownColor)
	}
	return nil
}

type stateResponse struct {
	ReferenceDate naiveTime         `json:"reference_date"`
	Granularity   model.Granularity `json:"granularity"`
	Title         string            `json:"title"`
	WeekStart     string            `json:"week_start"`
	Editor        *eventDTO         `json:"editor,omitempty"`
}

type placedDTO struct {
	eventDTO
	calendar.Position
}

type dayDTO struct {
	Date    string      `json:"date"`
	InMonth bool        `json:"in_month"`
	Today   bool        `json:"today"`
	Events  []placedDTO `json:"events"`
}

type viewResponse struct {
	Title         string            `json:"title"`
	ReferenceDate naiveTime         `json:"reference_date"`
	Granularity   model.Granularity `json:"granularity"`
	WeekStart     string            `json:"week_start"`
	HourHeight    float64           `json:"hour_height"`
	TodayVisible  bool              `json:"today_visible"`
	NowOffset     float64           `json:"now_offset"`
	Days          []dayDTO          `json:"days"`
}

func toViewResponse(s view.Snapshot) viewResponse {
	resp := viewResponse{
		Title:         s.Title,
		ReferenceDate: naiveTime(s.State.ReferenceDate),
		Granularity:   s.State.Granularity,
		WeekStart:     strings.ToLower(s.WeekStart.String()),
		HourHeight:    s.HourHeight,
		TodayVisible:  s.TodayVisible,
		NowOffset:     s.NowOffset,
		Days:          make([]dayDTO, 0, len(s.Columns)),
	}
	for _, col := range s.Columns {
		day := dayDTO{
			Date:    col.Date.Format(dateLayout),
			InMonth: col.InMonth,
			Today:   col.Today,
			Events:  make([]placedDTO, 0, len(col.Events)),
		}
		for _, p := range col.Events {
			day.Events = append(day.Events, placedDTO{eventDTO: toEventDTO(p.Event), Position: p.Position})
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}

type nowResponse struct {
	At           naiveTime `json:"at"`
	Offset       float64   `json:"offset"`
	TodayVisible bool      `json:"today_visible"`
}
