package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Reader parses SSE events from a source io.Reader.
//
// Events are accumulated line by line and sealed when a blank line (or the
// end of the stream) is reached. Parse failures are scoped: a malformed line
// yields a *LineError and an undecodable data payload yields a *DataError,
// but in both cases the Reader remains usable and subsequent calls to Next
// continue with the rest of the stream.
type Reader struct {
	scanner *bufio.Scanner

	// current accumulates fields for the event being built in the current scan.
	current *Event

	// data accumulates the values of "data:" lines, one "\n"-terminated
	// value per line, until the event is sealed.
	data    strings.Builder
	hasData bool
	hasAny  bool
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{
		scanner: scanner,
		current: &Event{},
	}
}

// Next returns the next parsed SSE event from the stream. It blocks until a
// complete event is available (terminated by a blank line in the stream).
// Next returns nil, nil when the source is exhausted.
//
// A stream that ends mid-event (no trailing blank line) still yields the
// final event.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		// A blank line signals the end of the current event.
		if raw == "" {
			if r.hasAny {
				return r.seal()
			}

			// Blank line with no accumulated fields — skip (e.g. leading
			// blank lines or keep-alive newlines).
			continue
		}

		// Lines starting with ':' are comments. They contribute no field
		// and do not terminate the event.
		if strings.HasPrefix(raw, ":") {
			continue
		}

		if err := r.parseLine(raw); err != nil {
			return nil, err
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Source exhausted and no error from the scanner. If there is an
	// in-progress event (stream ended without a trailing blank line),
	// yield it.
	if r.hasAny {
		return r.seal()
	}

	return nil, nil
}

// parseLine processes a single non-empty, non-comment SSE line and
// accumulates the field into the current event.
//
// Per the SSE spec, a line has the form "field:value" where the first
// space after the colon is optional and stripped if present. A line with
// no colon at all is malformed and reported as a *LineError; the current
// event's accumulated state is preserved.
func (r *Reader) parseLine(line string) error {
	field, value, ok := strings.Cut(line, ":")
	if !ok {
		return &LineError{Line: line}
	}

	// Strip a single leading space after the colon, per spec.
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "data":
		// Multi-line data payloads: each line's value contributes
		// value + "\n" to the accumulated payload.
		r.data.WriteString(value)
		r.data.WriteByte('\n')
		r.hasData = true
	case "event":
		r.current.Type = value
	case "id":
		r.current.ID = value
	default:
		if r.current.Fields == nil {
			r.current.Fields = make(map[string]string)
		}
		r.current.Fields[field] = value
	}
	r.hasAny = true

	return nil
}

// seal finalizes the current event: the accumulated data payload is checked
// to be valid JSON and attached to the event, and the reader is reset for
// the next event. An undecodable payload is reported as a *DataError
// carrying the sealed event with its raw payload.
func (r *Reader) seal() (*Event, error) {
	ev := r.current
	if r.hasData {
		ev.Data = json.RawMessage(r.data.String())
	}
	r.reset()

	if ev.Data != nil {
		var probe any
		if err := json.Unmarshal(ev.Data, &probe); err != nil {
			return nil, &DataError{Event: ev, Err: err}
		}
	}

	return ev, nil
}

// reset clears the accumulated event state for the next event.
func (r *Reader) reset() {
	r.current = &Event{}
	r.data.Reset()
	r.hasData = false
	r.hasAny = false
}
