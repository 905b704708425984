// Package sse provides a minimal SSE (Server-Sent Events) reader for
// consuming live event notifications from the workbench service. It parses
// the line-oriented `field: value` wire format into structured events,
// JSON-decoding the accumulated "data" payload when an event is sealed.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "encoding/json"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the JSON payload accumulated from all "data:" lines of this
	// event. Multiple data lines are joined with "\n" before decoding.
	// Nil when the event carried no data field.
	Data json.RawMessage

	// ID is the last event ID from the "id:" field, if present.
	ID string

	// Fields holds any other fields seen in the event (e.g. "retry").
	// Within one event a repeated field overwrites its prior value.
	// Nil when the event carried only the well-known fields.
	Fields map[string]string
}

// DecodeData unmarshals the event's data payload into v.
func (e *Event) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}
