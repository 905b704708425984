package mockservice

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

// errorResponse is the JSON error body returned by all handlers.
type errorResponse struct {
	Error string `json:"error"`
}

// caller resolves the requesting principal from identity headers: an
// assistant when X-Assistant-ID is present, a user otherwise.
func caller(c *fiber.Ctx) workbench.MessageSender {
	if assistantID := c.Get(workbench.HeaderAssistantID); assistantID != "" {
		return workbench.MessageSender{
			ParticipantID:   assistantID,
			ParticipantRole: workbench.ParticipantRoleAssistant,
		}
	}
	return workbench.MessageSender{
		ParticipantID:   "local-user",
		ParticipantRole: workbench.ParticipantRoleUser,
	}
}

func conversationID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleListConversations(c *fiber.Ctx) error {
	return c.JSON(workbench.ConversationList{
		Conversations: s.store.listConversations(),
	})
}

func (s *Server) handleCreateConversation(c *fiber.Ctx) error {
	var in workbench.NewConversation
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	conv := s.store.createConversation(in, caller(c).ParticipantID)
	return c.JSON(conv)
}

// handleDuplicateConversation copies an existing conversation. When the
// path ID does not name a conversation it is treated as an owner ID and a
// fresh conversation is created for that owner instead.
func (s *Server) handleDuplicateConversation(c *fiber.Ctx) error {
	var in workbench.NewConversation
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if id, err := conversationID(c); err == nil {
		if newID, ok := s.store.duplicateConversation(id, in); ok {
			return c.JSON(workbench.ConversationImportResult{
				ConversationIDs: []uuid.UUID{newID},
			})
		}
	}

	conv := s.store.createConversation(in, c.Params("id"))
	return c.JSON(conv)
}

func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	conv, ok := s.store.getConversation(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.JSON(conv)
}

func (s *Server) handleUpdateConversation(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	var in workbench.UpdateConversation
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	conv, ok := s.store.updateConversationMetadata(id, in.Metadata)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.JSON(conv)
}

func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	if !s.store.deleteConversation(id) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleCreateShare(c *fiber.Ctx) error {
	var in workbench.NewConversationShare
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	share := s.store.createShare(c.Params("owner"), in)
	return c.JSON(share)
}

func (s *Server) handleListParticipants(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	participants, ok := s.store.listParticipants(id, c.QueryBool("include_inactive"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.JSON(workbench.ConversationParticipantList{Participants: participants})
}

func (s *Server) handleGetParticipant(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	participantID := c.Params("participant")
	if participantID == "me" {
		participantID = caller(c).ParticipantID
	}

	p, ok := s.store.getParticipant(id, participantID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "participant not found"})
	}
	return c.JSON(p)
}

func (s *Server) handleUpdateParticipant(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	var in workbench.UpdateParticipant
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	who := caller(c)
	participantID := c.Params("participant")
	if participantID == "me" {
		participantID = who.ParticipantID
	}

	p, ok := s.store.updateParticipant(id, participantID, in, who.ParticipantRole)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}

	s.publishEvent(id, "participant.updated", map[string]any{"participant": p})
	return c.JSON(p)
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	q := messageQuery{
		participantRole: c.Query("participant_role"),
	}
	args := c.Context().QueryArgs()
	for _, v := range args.PeekMulti("message_type") {
		q.messageTypes = append(q.messageTypes, string(v))
	}
	for _, v := range args.PeekMulti("participant_id") {
		q.participantIDs = append(q.participantIDs, string(v))
	}
	if before, err := uuid.Parse(c.Query("before")); err == nil {
		q.before = &before
	}
	if after, err := uuid.Parse(c.Query("after")); err == nil {
		q.after = &after
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.limit = limit
	}

	messages, ok := s.store.listMessages(id, q)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.JSON(workbench.ConversationMessageList{Messages: messages})
}

func (s *Server) handleCreateMessage(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	var in workbench.NewConversationMessage
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	msg := workbench.ConversationMessage{
		ID:          uuid.New(),
		Sender:      caller(c),
		Content:     in.Content,
		ContentType: in.ContentType,
		MessageType: in.MessageType,
		Timestamp:   time.Now().UTC(),
		Filenames:   in.Filenames,
		Metadata:    in.Metadata,
	}
	if in.ID != nil {
		msg.ID = *in.ID
	}
	if msg.ContentType == "" {
		msg.ContentType = "text/plain"
	}
	if msg.MessageType == "" {
		msg.MessageType = workbench.MessageTypeChat
	}

	if !s.store.appendMessage(id, msg) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}

	s.publishEvent(id, "message.created", map[string]any{"message": msg})
	return c.JSON(msg)
}

func (s *Server) handleGetMessage(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	messageID, err := uuid.Parse(c.Params("message"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid message id"})
	}

	msg, ok := s.store.getMessage(id, messageID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "message not found"})
	}
	return c.JSON(msg)
}

// handlePutFiles accepts a multipart upload in the "files" field and
// stores each part as a new file version.
func (s *Server) handlePutFiles(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid multipart form"})
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "no files in upload"})
	}

	who := caller(c)
	files := make([]workbench.File, 0, len(parts))
	for _, part := range parts {
		content, err := readPart(part)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "reading upload"})
		}

		f, ok := s.store.putFile(id, part.Filename, part.Header.Get("Content-Type"), who.ParticipantID, content)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
		}
		files = append(files, f)

		s.publishEvent(id, "file.created", map[string]any{"file": f})
	}

	return c.JSON(workbench.FileList{Files: files})
}

func readPart(part *multipart.FileHeader) ([]byte, error) {
	f, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleListFiles(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	files, ok := s.store.listFiles(id, c.Query("prefix"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "conversation not found"})
	}
	return c.JSON(workbench.FileList{Files: files})
}

func (s *Server) handleReadFile(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	meta, content, ok := s.store.getFile(id, c.Params("filename"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "file not found"})
	}

	if meta.ContentType != "" {
		c.Set(fiber.HeaderContentType, meta.ContentType)
	}
	return c.Send(content)
}

func (s *Server) handleFileVersions(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	versions, ok := s.store.fileVersions(id, c.Params("filename"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "file not found"})
	}
	return c.JSON(versions)
}

func (s *Server) handleUpdateFile(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	var in workbench.UpdateFile
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	versions, ok := s.store.updateFileMetadata(id, c.Params("filename"), in.Metadata)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "file not found"})
	}
	return c.JSON(versions)
}

func (s *Server) handleDeleteFile(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid conversation id"})
	}

	filename := c.Params("filename")
	if !s.store.deleteFile(id, filename) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "file not found"})
	}

	s.publishEvent(id, "file.deleted", map[string]any{"filename": filename})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListAssistants(c *fiber.Ctx) error {
	return c.JSON(workbench.AssistantList{Assistants: s.store.listAssistants()})
}

func (s *Server) handleCreateAssistant(c *fiber.Ctx) error {
	var in workbench.NewAssistant
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	return c.JSON(s.store.createAssistant(in))
}

func (s *Server) handleGetAssistant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid assistant id"})
	}

	a, ok := s.store.getAssistant(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "assistant not found"})
	}
	return c.JSON(a)
}

func (s *Server) handleDeleteAssistant(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid assistant id"})
	}

	if !s.store.deleteAssistant(id) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "assistant not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetAssistantConfig(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid assistant id"})
	}

	cfg, ok := s.store.getConfig(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "assistant not found"})
	}
	return c.JSON(workbench.ConfigResponse{Config: cfg})
}

func (s *Server) handlePutAssistantConfig(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid assistant id"})
	}

	var in workbench.ConfigPutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if !s.store.putConfig(id, in.Config) {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "assistant not found"})
	}
	return c.JSON(workbench.ConfigResponse{Config: in.Config})
}

// handleStateEvent accepts an assistant state event and forwards it to the
// conversation's event stream.
func (s *Server) handleStateEvent(c *fiber.Ctx) error {
	convID, err := uuid.Parse(c.Query("conversation_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "conversation_id parameter required"})
	}

	var in workbench.AssistantStateEvent
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	s.publishEvent(convID, "assistant.state."+in.Event, map[string]any{
		"assistant_id": c.Params("id"),
		"state_id":     in.StateID,
	})
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleUpdateRegistration(c *fiber.Ctx) error {
	var in workbench.UpdateAssistantServiceRegistrationURL
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	s.store.putRegistration(c.Params("id"), in)
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleListAssistantServices(c *fiber.Ctx) error {
	return c.JSON(workbench.AssistantServiceInfoList{
		AssistantServiceInfos: s.store.listRegistrations(),
	})
}
