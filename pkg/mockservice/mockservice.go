// Package mockservice provides an in-memory workbench service for local
// development and tests. It implements the conversation, message,
// participant, file, assistant, and registration endpoints the SDK talks
// to, plus a per-conversation server-sent event stream.
//
// State lives in process memory and is lost on shutdown. The mock applies
// no authentication: identity headers are echoed back where the real
// service would resolve a principal from them.
package mockservice

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Config is the mock service configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3000")
	ListenAddr string
}

// Server is the mock workbench service.
type Server struct {
	config Config
	store  *store
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new mock workbench service.
func NewServer(config Config, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  newStore(),
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	app.Get("/conversations", s.handleListConversations)
	app.Post("/conversations", s.handleCreateConversation)
	app.Post("/conversations/:id", s.handleDuplicateConversation)
	app.Get("/conversations/:id", s.handleGetConversation)
	app.Patch("/conversations/:id", s.handleUpdateConversation)
	app.Delete("/conversations/:id", s.handleDeleteConversation)

	app.Post("/conversation-shares/:owner", s.handleCreateShare)

	app.Get("/conversations/:id/participants", s.handleListParticipants)
	app.Get("/conversations/:id/participants/:participant", s.handleGetParticipant)
	app.Patch("/conversations/:id/participants/:participant", s.handleUpdateParticipant)

	app.Get("/conversations/:id/messages", s.handleListMessages)
	app.Post("/conversations/:id/messages", s.handleCreateMessage)
	app.Get("/conversations/:id/messages/:message", s.handleGetMessage)

	app.Put("/conversations/:id/files", s.handlePutFiles)
	app.Get("/conversations/:id/files", s.handleListFiles)
	app.Get("/conversations/:id/files/:filename/versions", s.handleFileVersions)
	app.Patch("/conversations/:id/files/:filename", s.handleUpdateFile)
	app.Get("/conversations/:id/files/:filename", s.handleReadFile)
	app.Delete("/conversations/:id/files/:filename", s.handleDeleteFile)

	app.Get("/conversations/:id/events", s.handleEvents)

	app.Get("/assistants", s.handleListAssistants)
	app.Post("/assistants", s.handleCreateAssistant)
	app.Get("/assistants/:id", s.handleGetAssistant)
	app.Delete("/assistants/:id", s.handleDeleteAssistant)
	app.Get("/assistants/:id/config", s.handleGetAssistantConfig)
	app.Put("/assistants/:id/config", s.handlePutAssistantConfig)
	app.Post("/assistants/:id/states/events", s.handleStateEvent)

	app.Put("/assistant-service-registrations/:id", s.handleUpdateRegistration)
	app.Get("/assistant-services", s.handleListAssistantServices)

	return s
}

// Run starts the mock service on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock workbench service",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the mock service.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
