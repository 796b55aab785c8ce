// Package ical turns extracted schedule events into an iCalendar document.
// It never logs; per-event build failures are returned to the caller as
// diagnostics so one malformed row cannot take down the whole feed.
package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"uekcal/internal/schedule"
)

const (
	localTimestampLayout = "20060102T150405"
	composeLayout        = "2006-01-02 15:04"

	// provenanceLabel is the fixed last line of every DESCRIPTION.
	provenanceLabel = "Źródło: Plan zajęć UEK"
)

// Builder serializes events into a VCALENDAR bound to one fixed IANA
// timezone. The zone must resolve through the tz database so that
// wall-clock times around DST transitions map to the right instants;
// a fixed offset would silently shift half the semester.
type Builder struct {
	loc       *time.Location
	zoneID    string
	prodID    string
	uidSuffix string
	calName   string

	// now and newUID are swappable for tests.
	now    func() time.Time
	newUID func() string
}

// NewBuilder resolves the timezone and returns a ready Builder.
func NewBuilder(zoneID, prodID, uidSuffix, calName string) (*Builder, error) {
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zoneID, err)
	}
	return &Builder{
		loc:       loc,
		zoneID:    zoneID,
		prodID:    prodID,
		uidSuffix: uidSuffix,
		calName:   calName,
		now:       time.Now,
		newUID:    uuid.NewString,
	}, nil
}

// Build produces the ICS document for the given events, in input order.
// Events whose date/time cannot be composed into a local timestamp are
// skipped; each skip is reported as a *schedule.EventError in the second
// return value. The document is produced regardless, from whatever
// events survived.
func (b *Builder) Build(events []schedule.Event) (string, []error) {
	cal := ics.NewCalendar()
	cal.SetProductId(b.prodID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	if b.calName != "" {
		cal.SetXWRCalName(b.calName)
	}

	var skipped []error
	for i, ev := range events {
		start, err := b.composeLocal(ev.Date, ev.Start)
		if err != nil {
			skipped = append(skipped, &schedule.EventError{Index: i, Event: ev, Err: err})
			continue
		}
		end, err := b.composeLocal(ev.Date, ev.End)
		if err != nil {
			skipped = append(skipped, &schedule.EventError{Index: i, Event: ev, Err: err})
			continue
		}

		ve := cal.AddEvent(b.newUID() + "@" + b.uidSuffix)
		ve.SetDtStampTime(b.now().UTC())
		ve.SetProperty(ics.ComponentPropertyDtStart, start.Format(localTimestampLayout),
			&ics.KeyValues{Key: "TZID", Value: []string{b.zoneID}})
		ve.SetProperty(ics.ComponentPropertyDtEnd, end.Format(localTimestampLayout),
			&ics.KeyValues{Key: "TZID", Value: []string{b.zoneID}})
		ve.SetSummary(sanitizeText(ev.Title))
		ve.SetDescription(description(ev))
		if ev.Room != "" {
			ve.SetLocation(sanitizeText(ev.Room))
		}
	}

	return cal.Serialize(), skipped
}

func (b *Builder) composeLocal(date, hm string) (time.Time, error) {
	t, err := time.ParseInLocation(composeLayout, date+" "+hm, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("compose local timestamp: %w", err)
	}
	return t, nil
}

// description joins the labeled sub-fields with real newlines; the
// library escapes each one into the "\n" token calendar clients render
// as a line break. The individual values are sanitized first, so the
// joiners are the only newlines in the property.
func description(ev schedule.Event) string {
	parts := []string{
		"Typ: " + sanitizeText(ev.Type),
		"Prowadzący: " + sanitizeText(ev.Instructor),
		"Sala: " + sanitizeText(ev.Room),
		provenanceLabel,
	}
	return strings.Join(parts, "\n")
}

// sanitizeText applies the minimal ICS field-safety rule: literal commas
// and line breaks become spaces so they cannot act as separators.
func sanitizeText(s string) string {
	r := strings.NewReplacer(",", " ", "\r", " ", "\n", " ")
	return r.Replace(s)
}
