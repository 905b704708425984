package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/andrehe001/semanticworkbench/pkg/sse"
)

// ConversationClient wraps the endpoints scoped to a single conversation:
// the conversation itself, its participants, messages, files, and the live
// event stream.
type ConversationClient struct {
	client         *client
	conversationID string
}

func (c *ConversationClient) path(suffix string) string {
	return "/conversations/" + c.conversationID + suffix
}

// Get returns the conversation.
func (c *ConversationClient) Get(ctx context.Context) (*Conversation, error) {
	var conversation Conversation
	if err := c.client.do(ctx, http.MethodGet, c.path(""), nil, nil, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Delete deletes the conversation. A 404 response is treated as success:
// the conversation is already gone.
func (c *ConversationClient) Delete(ctx context.Context) error {
	err := c.client.do(ctx, http.MethodDelete, c.path(""), nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

// Duplicate copies the conversation into a new one.
func (c *ConversationClient) Duplicate(ctx context.Context, newConversation NewConversation) (*ConversationImportResult, error) {
	var result ConversationImportResult
	if err := c.client.do(ctx, http.MethodPost, c.path(""), nil, newConversation, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateMetadata replaces the conversation's metadata.
func (c *ConversationClient) UpdateMetadata(ctx context.Context, metadata map[string]any) (*Conversation, error) {
	var conversation Conversation
	update := UpdateConversation{Metadata: metadata}
	if err := c.client.do(ctx, http.MethodPatch, c.path(""), nil, update, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ParticipantMe returns the caller's own participant record.
func (c *ConversationClient) ParticipantMe(ctx context.Context) (*ConversationParticipant, error) {
	var participant ConversationParticipant
	if err := c.client.do(ctx, http.MethodGet, c.path("/participants/me"), nil, nil, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

// Participant returns a participant by ID, including inactive participants.
func (c *ConversationClient) Participant(ctx context.Context, participantID string) (*ConversationParticipant, error) {
	query := url.Values{"include_inactive": {"true"}}

	var participant ConversationParticipant
	if err := c.client.do(ctx, http.MethodGet, c.path("/participants/"+participantID), query, nil, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

// Participants lists the conversation's participants. A 404 response yields
// an empty list rather than an error.
func (c *ConversationClient) Participants(ctx context.Context, includeInactive bool) (*ConversationParticipantList, error) {
	query := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}

	var list ConversationParticipantList
	err := c.client.do(ctx, http.MethodGet, c.path("/participants"), query, nil, &list)
	if IsNotFound(err) {
		return &ConversationParticipantList{Participants: []ConversationParticipant{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateParticipant updates a participant's status or metadata.
func (c *ConversationClient) UpdateParticipant(ctx context.Context, participantID string, update UpdateParticipant) (*ConversationParticipant, error) {
	var participant ConversationParticipant
	if err := c.client.do(ctx, http.MethodPatch, c.path("/participants/"+participantID), nil, update, &participant); err != nil {
		return nil, err
	}
	return &participant, nil
}

// UpdateParticipantMe updates the caller's own participant record.
func (c *ConversationClient) UpdateParticipantMe(ctx context.Context, update UpdateParticipant) (*ConversationParticipant, error) {
	return c.UpdateParticipant(ctx, "me", update)
}

// Message returns a single message by ID.
func (c *ConversationClient) Message(ctx context.Context, messageID uuid.UUID) (*ConversationMessage, error) {
	var message ConversationMessage
	if err := c.client.do(ctx, http.MethodGet, c.path("/messages/"+messageID.String()), nil, nil, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// Messages lists the conversation's messages. A zero filter lists chat
// messages without bounds.
func (c *ConversationClient) Messages(ctx context.Context, filter MessageFilter) (*ConversationMessageList, error) {
	query := url.Values{}

	messageTypes := filter.MessageTypes
	if len(messageTypes) == 0 {
		messageTypes = []MessageType{MessageTypeChat}
	}
	for _, messageType := range messageTypes {
		query.Add("message_type", string(messageType))
	}
	for _, participantID := range filter.ParticipantIDs {
		query.Add("participant_id", participantID)
	}
	if filter.ParticipantRole != nil {
		query.Set("participant_role", string(*filter.ParticipantRole))
	}
	if filter.Before != nil {
		query.Set("before", filter.Before.String())
	}
	if filter.After != nil {
		query.Set("after", filter.After.String())
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var list ConversationMessageList
	if err := c.client.do(ctx, http.MethodGet, c.path("/messages"), query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SendMessages posts the given messages one request at a time, in input
// order, and returns the created messages in the same order. The first
// failure aborts the sequence.
func (c *ConversationClient) SendMessages(ctx context.Context, messages ...NewConversationMessage) (*ConversationMessageList, error) {
	sent := make([]ConversationMessage, 0, len(messages))
	for _, message := range messages {
		var created ConversationMessage
		if err := c.client.do(ctx, http.MethodPost, c.path("/messages"), nil, message, &created); err != nil {
			return nil, err
		}
		sent = append(sent, created)
	}
	return &ConversationMessageList{Messages: sent}, nil
}

// SendConversationStateEvent notifies the service that an assistant's
// state changed within this conversation.
func (c *ConversationClient) SendConversationStateEvent(ctx context.Context, assistantID string, event AssistantStateEvent) error {
	query := url.Values{"conversation_id": {c.conversationID}}
	return c.client.do(ctx, http.MethodPost, "/assistants/"+assistantID+"/states/events", query, event, nil)
}

// WriteFile uploads a file to the conversation as a multipart PUT and
// returns the stored file's descriptor.
func (c *ConversationClient) WriteFile(ctx context.Context, filename string, content io.Reader, contentType string) (*File, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("workbench: preparing upload for %q: %w", filename, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("workbench: reading upload content for %q: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("workbench: finalizing upload for %q: %w", filename, err)
	}

	req, err := c.client.newRequest(ctx, http.MethodPut, c.path("/files"), nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workbench: PUT %s: %w", c.path("/files"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(http.MethodPut, c.path("/files"), resp)
	}

	var list FileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &SchemaError{Shape: fmt.Sprintf("%T", &list), Err: err}
	}
	if len(list.Files) == 0 {
		return nil, &SchemaError{Shape: fmt.Sprintf("%T", &list), Err: fmt.Errorf("empty file list after upload")}
	}
	return &list.Files[0], nil
}

// ReadFile downloads a file as a stream. The caller must close the returned
// reader on every exit path; cancelling ctx closes the underlying
// connection if the caller stops reading early.
func (c *ConversationClient) ReadFile(ctx context.Context, filename string) (io.ReadCloser, error) {
	resp, err := c.client.doStream(ctx, http.MethodGet, c.path("/files/"+filename), nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetFile returns the descriptor for the named file, or nil when the file
// does not exist.
func (c *ConversationClient) GetFile(ctx context.Context, filename string) (*File, error) {
	list, err := c.Files(ctx, filename)
	if err != nil {
		return nil, err
	}

	for i := range list.Files {
		if list.Files[i].Filename == filename {
			return &list.Files[i], nil
		}
	}
	return nil, nil
}

// Files lists the conversation's files, optionally narrowed to a filename
// prefix.
func (c *ConversationClient) Files(ctx context.Context, prefix string) (*FileList, error) {
	query := url.Values{}
	if prefix != "" {
		query.Set("prefix", prefix)
	}

	var list FileList
	if err := c.client.do(ctx, http.MethodGet, c.path("/files"), query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// FileExists reports whether the named file exists in the conversation.
func (c *ConversationClient) FileExists(ctx context.Context, filename string) (bool, error) {
	err := c.client.do(ctx, http.MethodGet, c.path("/files/"+filename+"/versions"), nil, nil, nil)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteFile deletes a file. A 404 response is treated as success.
func (c *ConversationClient) DeleteFile(ctx context.Context, filename string) error {
	err := c.client.do(ctx, http.MethodDelete, c.path("/files/"+filename), nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

// UpdateFile replaces a file's metadata and returns its version history.
func (c *ConversationClient) UpdateFile(ctx context.Context, filename string, metadata map[string]any) (*FileVersions, error) {
	var versions FileVersions
	update := UpdateFile{Metadata: metadata}
	if err := c.client.do(ctx, http.MethodPatch, c.path("/files/"+filename), nil, update, &versions); err != nil {
		return nil, err
	}
	return &versions, nil
}

// Events opens the SSE session at eventSourceURL and returns a stream of
// parsed events. The URL is absolute: the service hands it out when the
// conversation is joined. The caller must close the stream; cancelling ctx
// also releases the underlying connection.
func (c *ConversationClient) Events(ctx context.Context, eventSourceURL string) (*EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventSourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("workbench: building event stream request: %w", err)
	}

	for name, values := range c.client.headers {
		req.Header[name] = values
	}
	req.Header.Set(HeaderCorrelationID, CorrelationID(ctx))
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workbench: GET %s: %w", eventSourceURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(http.MethodGet, eventSourceURL, resp)
	}

	return &EventStream{
		body:   resp.Body,
		reader: sse.NewReader(resp.Body),
	}, nil
}

// EventStream is a live SSE session with the workbench service.
type EventStream struct {
	body   io.ReadCloser
	reader *sse.Reader
}

// Next returns the next event from the session. It returns nil, nil when
// the service closes the stream. Parse failures are scoped to a single line
// or event (see pkg/sse); the stream remains usable afterwards.
func (s *EventStream) Next() (*sse.Event, error) {
	return s.reader.Next()
}

// Close releases the underlying connection. It is safe to call after the
// stream has ended.
func (s *EventStream) Close() error {
	return s.body.Close()
}
