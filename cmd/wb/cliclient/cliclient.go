// Package cliclient resolves CLI configuration into workbench API clients.
// It bridges the viper precedence chain (flags, env, config.toml, defaults)
// and the session state in the .workbench/ directory to the typed client
// builders.
package cliclient

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/pkg/config"
	"github.com/andrehe001/semanticworkbench/pkg/dotdir"
	"github.com/andrehe001/semanticworkbench/pkg/logger"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

// Settings holds the resolved connection and identity values for one
// command invocation.
type Settings struct {
	BaseURL            string
	AssistantServiceID string
	APIKey             string
	AssistantID        string
	UserToken          string
	MockListen         string

	configDir string
	logger    *slog.Logger
}

// clientFlags are the connection flags shared by every command that talks
// to the service. Register them with AddFlags; Load binds them into the
// viper precedence chain.
var clientFlags = config.FlagSet{
	config.FlagServiceURL: {
		Name:        "service-url",
		ViperKey:    "service.base_url",
		Description: "Workbench service base URL",
	},
	config.FlagUserToken: {
		Name:        "token",
		ViperKey:    "identity.user_token",
		Description: "Act as a user with this bearer token",
	},
}

// AddFlags registers the shared client flags on cmd and its subcommands.
// Values are read back through viper, not the flag targets.
func AddFlags(cmd *cobra.Command) {
	var serviceURL, token string
	config.AddPersistentStringFlag(cmd, clientFlags, config.FlagServiceURL, &serviceURL)
	config.AddPersistentStringFlag(cmd, clientFlags, config.FlagUserToken, &token)
}

// Load resolves settings through viper: flags registered via AddFlags,
// then WORKBENCH_ environment variables, then config.toml, then defaults.
func Load(cmd *cobra.Command) (*Settings, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, clientFlags, []string{
		config.FlagServiceURL,
		config.FlagUserToken,
	})

	opts := []logger.Option{logger.WithPretty(true), logger.WithDebug(debug)}

	return &Settings{
		BaseURL:            v.GetString("service.base_url"),
		AssistantServiceID: v.GetString("identity.assistant_service_id"),
		APIKey:             v.GetString("identity.api_key"),
		AssistantID:        v.GetString("identity.assistant_id"),
		UserToken:          v.GetString("identity.user_token"),
		MockListen:         v.GetString("mock.listen"),
		configDir:          configDir,
		logger:             logger.New(opts...),
	}, nil
}

// Logger returns the logger built for this invocation.
func (s *Settings) Logger() *slog.Logger {
	return s.logger
}

// asUser reports whether commands should act as a user principal. A
// configured user token wins over service credentials.
func (s *Settings) asUser() bool {
	return s.UserToken != ""
}

func (s *Settings) userBuilder() *workbench.UserClientBuilder {
	return workbench.NewUserClientBuilder(
		s.BaseURL,
		workbench.UserRequestHeaders{Token: s.UserToken},
		workbench.WithLogger(s.logger),
	)
}

func (s *Settings) serviceBuilder() *workbench.ServiceClientBuilder {
	return workbench.NewServiceClientBuilder(
		s.BaseURL,
		s.AssistantServiceID,
		s.APIKey,
		workbench.WithLogger(s.logger),
	)
}

// assistantUUID parses the configured assistant ID, tolerating an empty
// value (the zero UUID is sent, which the service rejects where it matters).
func (s *Settings) assistantUUID() uuid.UUID {
	id, err := uuid.Parse(s.AssistantID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Conversations returns the conversation-collection client for the
// resolved identity.
func (s *Settings) Conversations() *workbench.ConversationsClient {
	if s.asUser() {
		return s.userBuilder().ForConversations()
	}
	if s.AssistantID != "" {
		return s.serviceBuilder().ForAssistantConversations(s.assistantUUID())
	}
	return s.serviceBuilder().ForConversations()
}

// Conversation returns a client scoped to the given conversation for the
// resolved identity.
func (s *Settings) Conversation(conversationID string) *workbench.ConversationClient {
	if s.asUser() {
		return s.userBuilder().ForConversation(conversationID)
	}
	return s.serviceBuilder().ForConversation(s.assistantUUID(), conversationID)
}

// Assistants returns the assistant-collection client. Assistant management
// is a user-principal surface, so the user builder is always used.
func (s *Settings) Assistants() *workbench.AssistantsClient {
	return s.userBuilder().ForAssistants()
}

// Assistant returns a client scoped to the given assistant.
func (s *Settings) Assistant(assistantID string) *workbench.AssistantClient {
	return s.userBuilder().ForAssistant(assistantID)
}

// Service returns the long-lived registration client for the configured
// service credentials.
func (s *Settings) Service() *workbench.AssistantServiceClient {
	return s.serviceBuilder().ForService()
}

// EventsURL returns the SSE endpoint for a conversation.
func (s *Settings) EventsURL(conversationID string) string {
	return s.BaseURL + "/conversations/" + conversationID + "/events"
}

// ResolveConversationID returns the explicit ID when given, falling back
// to the active conversation in the session state.
func (s *Settings) ResolveConversationID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	state, err := dotdir.NewManager().LoadSessionState(s.configDir)
	if err != nil {
		return "", err
	}
	if state == nil || state.ConversationID == "" {
		return "", errors.New("no conversation selected: pass --conversation or run \"wb conversations use <id>\"")
	}
	return state.ConversationID, nil
}
