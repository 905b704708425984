package mockservice

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// conversationEvent is the envelope published on the event stream.
type conversationEvent struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	CorrelationID  string         `json:"correlation_id,omitempty"`
	Event          string         `json:"event"`
	Timestamp      time.Time      `json:"timestamp"`
	Data           map[string]any `json:"data,omitempty"`
}

// publishEvent fans an event out to every subscriber of the conversation.
func (s *Server) publishEvent(conversationID uuid.UUID, eventType string, data map[string]any) {
	payload := conversationEvent{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Event:          eventType,
		Timestamp:      time.Now().UTC(),
		Data:           data,
	}

	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		s.logger.Error("encoding event frame",
			"event", eventType,
			"error", err,
		)
		return
	}

	s.store.publish(conversationID, frame)
}

// encodeFrame renders a single server-sent event. json.Marshal never emits
// newlines, so the data payload always fits on one data line.
func encodeFrame(eventType string, payload conversationEvent) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return fmt.Appendf(nil, "event: %s\nid: %s\ndata: %s\n\n", eventType, payload.ID, data), nil
}

// handleEvents serves the conversation's server-sent event stream.
//
// The response body is an io.Pipe rather than fasthttp's stream writer:
// pipe writes block until the reader consumes them, and fasthttp's chunked
// body writer flushes to the socket after every chunk, so each event
// reaches the client as soon as it is published.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	if _, ok := s.store.getConversation(id); !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	events, cancel := s.store.subscribe(id)

	pr, pw := io.Pipe()
	go s.streamEvents(pw, events, cancel)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// streamEvents copies published frames to the pipe until the client goes
// away or the subscription is closed.
func (s *Server) streamEvents(pw *io.PipeWriter, events <-chan []byte, cancel func()) {
	defer cancel()
	defer pw.Close()

	// Opening comment lets clients see the stream is established.
	if _, err := pw.Write([]byte(": stream established\n\n")); err != nil {
		return
	}

	for frame := range events {
		if _, err := pw.Write(frame); err != nil {
			// Client disconnected.
			return
		}
	}
}
