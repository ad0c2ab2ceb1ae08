package ics

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "webcal/internal/log"
	"webcal/internal/model"
)

// defaultDuration is used for VEVENTs without DTEND.
const defaultDuration = time.Hour

// ParseICS parses a single ICS payload into drafts ready to be added to the
// store.
//
//   - DTSTART/DTEND are converted to wall-clock time in time.Local; zone
//     information is dropped afterwards.
//   - RRULE is not expanded: a recurring event is imported once, at its
//     first occurrence.
//   - COLOR is mapped onto model.Color; unknown values use the default.
//   - VEVENTs without DTSTART are skipped.
func ParseICS(body []byte) ([]model.Draft, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	drafts := make([]model.Draft, 0)
	for _, ve := range cal.Events() {
		d, perr := parseVEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent skipped", perr, "uid", ve.Id())
			continue
		}
		drafts = append(drafts, d)
	}

	appLog.Info("ics parse completed", "event_count", len(drafts))
	return drafts, nil
}

// LoadFile reads and parses an .ics file from disk.
func LoadFile(path string) ([]model.Draft, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseICS(body)
}

func parseVEvent(ve *ical.VEvent) (model.Draft, error) {
	var d model.Draft

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		d.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		d.Description = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return d, err
	}
	d.Start = wallClock(start)

	if end, err := ve.GetEndAt(); err == nil {
		d.End = wallClock(end)
	} else {
		d.End = d.Start.Add(defaultDuration)
	}

	d.Color = model.DefaultColor
	if p := ve.GetProperty(ical.ComponentPropertyColor); p != nil {
		if c, cerr := model.ParseColor(p.Value); cerr == nil {
			d.Color = c
		} else {
			appLog.Debug("ics: unknown color, using default", "uid", ve.Id(), "color", p.Value)
		}
	}

	if rr := ve.GetProperty(ical.ComponentPropertyRrule); rr != nil && strings.TrimSpace(rr.Value) != "" {
		appLog.Info("ics: recurring event imported as a single occurrence", "uid", ve.Id(), "rrule", rr.Value)
	}

	return d, nil
}

// wallClock reads t in time.Local and rebuilds it from its fields, so the
// result carries no trace of the source zone.
func wallClock(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}
