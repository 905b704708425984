package workbench

import (
	"net/http"

	"github.com/google/uuid"
)

// Identity header names used by the workbench service for authorization.
const (
	HeaderAssistantServiceID = "X-Assistant-Service-ID"
	HeaderAssistantID        = "X-Assistant-ID"
	HeaderAPIKey             = "X-API-Key"
)

// AssistantServiceRequestHeaders asserts the identity of an assistant
// service (service-to-service calls).
type AssistantServiceRequestHeaders struct {
	AssistantServiceID string
	APIKey             string
}

// ToHeaders returns the HTTP headers conveying the service identity.
func (h AssistantServiceRequestHeaders) ToHeaders() http.Header {
	headers := make(http.Header)
	headers.Set(HeaderAssistantServiceID, h.AssistantServiceID)
	headers.Set(HeaderAPIKey, h.APIKey)
	return headers
}

// AssistantServiceRequestHeadersFrom extracts service identity from request
// headers. Missing headers yield empty values.
func AssistantServiceRequestHeadersFrom(headers http.Header) AssistantServiceRequestHeaders {
	return AssistantServiceRequestHeaders{
		AssistantServiceID: headers.Get(HeaderAssistantServiceID),
		APIKey:             headers.Get(HeaderAPIKey),
	}
}

// AssistantRequestHeaders asserts the identity of a specific assistant
// hosted by an assistant service.
type AssistantRequestHeaders struct {
	AssistantID uuid.UUID
}

// ToHeaders returns the HTTP headers conveying the assistant identity.
func (h AssistantRequestHeaders) ToHeaders() http.Header {
	headers := make(http.Header)
	headers.Set(HeaderAssistantID, h.AssistantID.String())
	return headers
}

// AssistantRequestHeadersFrom extracts the assistant identity from request
// headers. An absent or unparseable ID yields the zero UUID.
func AssistantRequestHeadersFrom(headers http.Header) AssistantRequestHeaders {
	id, err := uuid.Parse(headers.Get(HeaderAssistantID))
	if err != nil {
		return AssistantRequestHeaders{}
	}
	return AssistantRequestHeaders{AssistantID: id}
}

// UserRequestHeaders asserts the identity of an end user via a bearer token.
type UserRequestHeaders struct {
	Token string
}

// ToHeaders returns the HTTP headers conveying the user identity.
func (h UserRequestHeaders) ToHeaders() http.Header {
	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+h.Token)
	return headers
}
