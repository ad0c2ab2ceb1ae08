package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"webcal/internal/model"
)

const (
	productID = "-//webcal//webcal 0.1//EN"
	// floatingLayout writes DTSTART/DTEND without zone, matching the naive
	// times held in the store.
	floatingLayout = "20060102T150405"
)

// Export renders events as a VCALENDAR document. stamp is written as
// DTSTAMP of every VEVENT.
func Export(events []model.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetProperty(ical.ComponentPropertyDtStart, e.Start.Format(floatingLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.End.Format(floatingLayout))
		ve.SetColor(e.Color.String())
	}

	return cal.Serialize()
}
