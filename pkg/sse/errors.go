package sse

import "fmt"

// LineError reports a malformed SSE line that carried no field delimiter.
// The error is scoped to the single line: the reader remains usable and the
// next call to Next continues with the rest of the stream.
type LineError struct {
	// Line is the raw offending line.
	Line string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("sse: malformed line (no field delimiter): %q", e.Line)
}

// DataError reports that an event's accumulated data payload was not valid
// JSON. The error is scoped to the single event: the partially decoded event
// is available in Event, and the next call to Next continues with the rest
// of the stream.
type DataError struct {
	// Event is the offending event, with Data holding the raw accumulated
	// (undecodable) payload.
	Event *Event

	// Err is the underlying JSON decode error.
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("sse: event data is not valid JSON: %v", e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
