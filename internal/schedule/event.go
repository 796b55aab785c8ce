package schedule

import "fmt"

// Event is a single extracted class occurrence, kept as the strings found
// on the page. Date is ISO YYYY-MM-DD, Start/End are HH:MM wall-clock.
// Semantic validity of Date+Start/End is checked when the calendar is
// built, not here; extraction only guarantees the time-range shape.
type Event struct {
	Date       string
	Start      string
	End        string
	Title      string
	Type       string
	Instructor string
	Room       string
}

// Strategy converts a raw schedule document into events. Implementations
// drop malformed rows/lines and keep going; they fail only when the
// document itself cannot be read at all.
type Strategy interface {
	Extract(doc []byte) ([]Event, error)
}

// ParseError means the fetched body could not be parsed as markup at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schedule document unparseable: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EventError reports one event whose date/time failed to compose into a
// timestamp. It is always contained by the caller and never aborts a batch.
type EventError struct {
	Index int
	Event Event
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s %s): %v", e.Index, e.Event.Date, e.Event.Start, e.Err)
}

func (e *EventError) Unwrap() error { return e.Err }
