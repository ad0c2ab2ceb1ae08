// Package seed supplies the events a fresh store starts with.
package seed

import (
	"context"
	"strconv"
	"strings"
	"time"

	"webcal/internal/calendar"
	"webcal/internal/config"
	"webcal/internal/ics"
	appLog "webcal/internal/log"
	"webcal/internal/model"
)

// SampleEvents returns the demo calendar: a handful of events around the
// week containing now.
func SampleEvents(now time.Time) []model.Event {
	today := calendar.StartOfDay(now)
	weekStart := calendar.StartOfWeek(today, calendar.DefaultWeekStart)

	// at builds a wall-clock time on the date offset days after day.
	at := func(day time.Time, offset int, hours float64) time.Time {
		y, m, d := calendar.AddDays(day, offset).Date()
		h := int(hours)
		return calendar.At(y, m, d, h, int((hours-float64(h))*60), day.Location())
	}

	return []model.Event{
		{ID: "1", Title: "Team Meeting", Description: "Weekly sync with the engineering team.",
			Start: at(today, 0, 10), End: at(today, 0, 11), Color: model.Blue},
		{ID: "2", Title: "Lunch with Sarah",
			Start: at(today, 0, 12), End: at(today, 0, 13), Color: model.Green},
		{ID: "3", Title: "Project Deadline", Description: "Final submission for the Q3 project.",
			Start: at(today, 2, 17), End: at(today, 2, 18), Color: model.Red},
		{ID: "4", Title: "Code Review",
			Start: at(today, -1, 14), End: at(today, -1, 15.5), Color: model.Purple},
		{ID: "5", Title: "Client Call",
			Start: at(weekStart, 1, 9), End: at(weekStart, 1, 10.5), Color: model.Yellow},
		{ID: "6", Title: "Gym",
			Start: at(today, 0, 18), End: at(today, 0, 19.5), Color: model.Indigo},
		{ID: "7", Title: "Dentist Appointment",
			Start: at(today, 4, 8), End: at(today, 4, 9), Color: model.Pink},
	}
}

// Load resolves cfg.Seed into initial store contents.
//
//   - "sample": SampleEvents
//   - "none":   empty
//   - http(s):  ICS feed fetched through ics.Fetcher
//   - else:     path to an .ics file
//
// Events read from ICS get sequential ids "1", "2", ...
func Load(ctx context.Context, cfg *config.Config, now time.Time) ([]model.Event, error) {
	src := strings.TrimSpace(cfg.Seed)

	switch {
	case src == "" || src == config.SeedSample:
		return SampleEvents(now), nil
	case src == config.SeedNone:
		return nil, nil
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		body, fromCache, err := ics.NewFetcher(cfg.CacheDir).Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		drafts, err := ics.ParseICS(body)
		if err != nil {
			return nil, err
		}
		appLog.Info("seed loaded from feed", "count", len(drafts), "from_cache", fromCache)
		return withIDs(drafts), nil
	default:
		drafts, err := ics.LoadFile(src)
		if err != nil {
			return nil, err
		}
		appLog.Info("seed loaded from file", "path", src, "count", len(drafts))
		return withIDs(drafts), nil
	}
}

func withIDs(drafts []model.Draft) []model.Event {
	out := make([]model.Event, len(drafts))
	for i, d := range drafts {
		out[i] = d.Event(strconv.Itoa(i + 1))
	}
	return out
}
