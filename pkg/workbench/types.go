package workbench

import (
	"time"

	"github.com/google/uuid"
)

// The shapes below mirror the workbench service's JSON schema. The service
// owns all business invariants on these entities; the client only
// serializes requests (omitting unset fields) and deserializes responses.

// MessageType classifies a conversation message.
type MessageType string

const (
	MessageTypeChat            MessageType = "chat"
	MessageTypeLog             MessageType = "log"
	MessageTypeNote            MessageType = "note"
	MessageTypeNotice          MessageType = "notice"
	MessageTypeCommand         MessageType = "command"
	MessageTypeCommandResponse MessageType = "command-response"
)

// ParticipantRole identifies the kind of conversation participant.
type ParticipantRole string

const (
	ParticipantRoleUser      ParticipantRole = "user"
	ParticipantRoleAssistant ParticipantRole = "assistant"
	ParticipantRoleService   ParticipantRole = "service"
)

// NewConversation is the request body for creating or duplicating a
// conversation.
type NewConversation struct {
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Conversation is a workbench conversation.
type Conversation struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	OwnerID         string         `json:"owner_id,omitempty"`
	ImportedFromID  *uuid.UUID     `json:"imported_from_conversation_id,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedDatetime time.Time      `json:"created_datetime,omitzero"`
}

// ConversationList is the response shape for conversation listings.
type ConversationList struct {
	Conversations []Conversation `json:"conversations"`
}

// UpdateConversation is the request body for updating conversation metadata.
type UpdateConversation struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ConversationImportResult is returned when a conversation is duplicated.
type ConversationImportResult struct {
	ConversationIDs []uuid.UUID `json:"conversation_ids"`
	AssistantIDs    []uuid.UUID `json:"assistant_ids,omitempty"`
}

// NewConversationShare is the request body for sharing a conversation on
// behalf of its owner.
type NewConversationShare struct {
	ConversationID         uuid.UUID      `json:"conversation_id"`
	Label                  string         `json:"label"`
	ConversationPermission string         `json:"conversation_permission,omitempty"`
	Metadata               map[string]any `json:"metadata,omitempty"`
}

// ConversationShare is a share granting access to a conversation.
type ConversationShare struct {
	ID                     uuid.UUID      `json:"id"`
	ConversationID         uuid.UUID      `json:"conversation_id"`
	Label                  string         `json:"label"`
	ConversationPermission string         `json:"conversation_permission,omitempty"`
	CreatedByUserID        string         `json:"created_by_user_id,omitempty"`
	Metadata               map[string]any `json:"metadata,omitempty"`
}

// MessageSender identifies the participant that sent a message.
type MessageSender struct {
	ParticipantID   string          `json:"participant_id"`
	ParticipantRole ParticipantRole `json:"participant_role"`
}

// NewConversationMessage is the request body for sending a message.
type NewConversationMessage struct {
	ID          *uuid.UUID     `json:"id,omitempty"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type,omitempty"`
	MessageType MessageType    `json:"message_type,omitempty"`
	Filenames   []string       `json:"filenames,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ConversationMessage is a message within a conversation.
type ConversationMessage struct {
	ID          uuid.UUID      `json:"id"`
	Sender      MessageSender  `json:"sender"`
	Content     string         `json:"content"`
	ContentType string         `json:"content_type,omitempty"`
	MessageType MessageType    `json:"message_type"`
	Timestamp   time.Time      `json:"timestamp,omitzero"`
	Filenames   []string       `json:"filenames,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ConversationMessageList is the response shape for message listings.
type ConversationMessageList struct {
	Messages []ConversationMessage `json:"messages"`
}

// MessageFilter narrows a Messages listing. A zero filter lists chat
// messages without bounds.
type MessageFilter struct {
	Before          *uuid.UUID
	After           *uuid.UUID
	MessageTypes    []MessageType
	ParticipantIDs  []string
	ParticipantRole *ParticipantRole
	Limit           int
}

// ConversationParticipant is a participant in a conversation.
type ConversationParticipant struct {
	ID              string          `json:"id"`
	Role            ParticipantRole `json:"role"`
	Name            string          `json:"name,omitempty"`
	Status          *string         `json:"status"`
	StatusTimestamp time.Time       `json:"status_updated_timestamp,omitzero"`
	Active          bool            `json:"active_participant"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
}

// ConversationParticipantList is the response shape for participant
// listings.
type ConversationParticipantList struct {
	Participants []ConversationParticipant `json:"participants"`
}

// UpdateParticipant is the request body for updating a participant.
type UpdateParticipant struct {
	Status   *string        `json:"status,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AssistantStateEvent notifies the service that an assistant's state
// changed for a conversation.
type AssistantStateEvent struct {
	StateID string `json:"state_id"`
	Event   string `json:"event"`
}

// File describes a file attached to a conversation.
type File struct {
	ConversationID  uuid.UUID      `json:"conversation_id"`
	Filename        string         `json:"filename"`
	CurrentVersion  int            `json:"current_version"`
	ContentType     string         `json:"content_type,omitempty"`
	FileSize        int64          `json:"file_size"`
	ParticipantID   string         `json:"participant_id,omitempty"`
	CreatedDatetime time.Time      `json:"created_datetime,omitzero"`
	UpdatedDatetime time.Time      `json:"updated_datetime,omitzero"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// FileList is the response shape for file listings.
type FileList struct {
	Files []File `json:"files"`
}

// FileVersion is a single stored version of a file.
type FileVersion struct {
	Version     int            `json:"version"`
	ContentType string         `json:"content_type,omitempty"`
	FileSize    int64          `json:"file_size"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// FileVersions is the version history of a file.
type FileVersions struct {
	ConversationID uuid.UUID     `json:"conversation_id"`
	Filename       string        `json:"filename"`
	CurrentVersion int           `json:"current_version"`
	Versions       []FileVersion `json:"versions,omitempty"`
}

// UpdateFile is the request body for updating file metadata.
type UpdateFile struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewAssistant is the request body for creating an assistant.
type NewAssistant struct {
	Name               string         `json:"name"`
	AssistantServiceID string         `json:"assistant_service_id"`
	Image              string         `json:"image,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// Assistant is an assistant instance registered with the workbench.
type Assistant struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	AssistantServiceID string         `json:"assistant_service_id"`
	Image              string         `json:"image,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	CreatedDatetime    time.Time      `json:"created_datetime,omitzero"`
}

// AssistantList is the response shape for assistant listings.
type AssistantList struct {
	Assistants []Assistant `json:"assistants"`
}

// ConfigResponse is an assistant's configuration with its schemas.
type ConfigResponse struct {
	Config     map[string]any `json:"config"`
	JSONSchema map[string]any `json:"json_schema,omitempty"`
	UISchema   map[string]any `json:"ui_schema,omitempty"`
}

// ConfigPutRequest replaces an assistant's configuration.
type ConfigPutRequest struct {
	Config map[string]any `json:"config"`
}

// UpdateAssistantServiceRegistrationURL refreshes the callback URL and
// online window for an assistant-service registration.
type UpdateAssistantServiceRegistrationURL struct {
	Name                   string  `json:"name,omitempty"`
	URL                    string  `json:"url"`
	OnlineExpiresInSeconds float64 `json:"online_expires_in_seconds"`
}

// AssistantServiceInfo describes a registered assistant service.
type AssistantServiceInfo struct {
	AssistantServiceID string         `json:"assistant_service_id"`
	Name               string         `json:"name,omitempty"`
	Description        string         `json:"description,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// AssistantServiceInfoList is the response shape for assistant-service
// listings.
type AssistantServiceInfoList struct {
	AssistantServiceInfos []AssistantServiceInfo `json:"assistant_service_infos"`
}
