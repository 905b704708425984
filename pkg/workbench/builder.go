package workbench

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Option configures a client builder.
type Option func(*builderOptions)

type builderOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient overrides the HTTP client used for all requests. The
// default client uses NewTransport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *builderOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger sets the logger for request-level debug logging. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *builderOptions) {
		o.logger = logger
	}
}

func newBuilderOptions(opts []Option) builderOptions {
	options := builderOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.httpClient == nil {
		options.httpClient = &http.Client{Transport: NewTransport()}
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return options
}

// ServiceClientBuilder assembles resource clients for an assistant service
// authenticating with a service ID and API key.
type ServiceClientBuilder struct {
	baseURL  string
	identity AssistantServiceRequestHeaders
	options  builderOptions
}

// NewServiceClientBuilder returns a builder bound to the given base URL and
// service credentials.
func NewServiceClientBuilder(baseURL, assistantServiceID, apiKey string, opts ...Option) *ServiceClientBuilder {
	return &ServiceClientBuilder{
		baseURL: baseURL,
		identity: AssistantServiceRequestHeaders{
			AssistantServiceID: assistantServiceID,
			APIKey:             apiKey,
		},
		options: newBuilderOptions(opts),
	}
}

func (b *ServiceClientBuilder) newClient(identity ...RequestHeaders) *client {
	return newClient(b.baseURL, b.options.httpClient, b.options.logger, append([]RequestHeaders{b.identity}, identity...)...)
}

// ForService returns the long-lived registration client.
func (b *ServiceClientBuilder) ForService() *AssistantServiceClient {
	return &AssistantServiceClient{client: b.newClient()}
}

// ForConversation returns a conversation client acting as the given
// assistant within the given conversation.
func (b *ServiceClientBuilder) ForConversation(assistantID uuid.UUID, conversationID string) *ConversationClient {
	return &ConversationClient{
		client:         b.newClient(AssistantRequestHeaders{AssistantID: assistantID}),
		conversationID: conversationID,
	}
}

// ForConversations returns a conversation-collection client acting as the
// service alone.
func (b *ServiceClientBuilder) ForConversations() *ConversationsClient {
	return &ConversationsClient{client: b.newClient()}
}

// ForAssistantConversations returns a conversation-collection client acting
// as the given assistant.
func (b *ServiceClientBuilder) ForAssistantConversations(assistantID uuid.UUID) *ConversationsClient {
	return &ConversationsClient{
		client: b.newClient(AssistantRequestHeaders{AssistantID: assistantID}),
	}
}

// UserClientBuilder assembles resource clients for an end user
// authenticating with a bearer token.
type UserClientBuilder struct {
	baseURL  string
	identity UserRequestHeaders
	options  builderOptions
}

// NewUserClientBuilder returns a builder bound to the given base URL and
// user token.
func NewUserClientBuilder(baseURL string, headers UserRequestHeaders, opts ...Option) *UserClientBuilder {
	return &UserClientBuilder{
		baseURL:  baseURL,
		identity: headers,
		options:  newBuilderOptions(opts),
	}
}

func (b *UserClientBuilder) newClient() *client {
	return newClient(b.baseURL, b.options.httpClient, b.options.logger, b.identity)
}

// ForAssistants returns the assistant-collection client.
func (b *UserClientBuilder) ForAssistants() *AssistantsClient {
	return &AssistantsClient{client: b.newClient()}
}

// ForAssistant returns a client scoped to the given assistant.
func (b *UserClientBuilder) ForAssistant(assistantID string) *AssistantClient {
	return &AssistantClient{client: b.newClient(), assistantID: assistantID}
}

// ForConversations returns the conversation-collection client.
func (b *UserClientBuilder) ForConversations() *ConversationsClient {
	return &ConversationsClient{client: b.newClient()}
}

// ForConversation returns a client scoped to the given conversation.
func (b *UserClientBuilder) ForConversation(conversationID string) *ConversationClient {
	return &ConversationClient{client: b.newClient(), conversationID: conversationID}
}
