package mockservice

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

// fileRecord holds the metadata and version history for one stored file.
// Version payloads are kept in full so reads can serve any prior version.
type fileRecord struct {
	meta     workbench.File
	versions []fileVersion
}

type fileVersion struct {
	info    workbench.FileVersion
	content []byte
}

// conversationRecord bundles a conversation with everything scoped to it.
type conversationRecord struct {
	conversation workbench.Conversation
	participants map[string]workbench.ConversationParticipant
	messages     []workbench.ConversationMessage
	files        map[string]*fileRecord
}

// store is the in-memory state shared by all handlers. A single mutex
// guards everything; the mock favors simplicity over contention.
type store struct {
	mu sync.Mutex

	conversations map[uuid.UUID]*conversationRecord
	assistants    map[uuid.UUID]workbench.Assistant
	configs       map[uuid.UUID]map[string]any
	registrations map[string]workbench.UpdateAssistantServiceRegistrationURL
	shares        map[uuid.UUID]workbench.ConversationShare

	subscribers map[uuid.UUID]map[chan []byte]struct{}
}

func newStore() *store {
	return &store{
		conversations: make(map[uuid.UUID]*conversationRecord),
		assistants:    make(map[uuid.UUID]workbench.Assistant),
		configs:       make(map[uuid.UUID]map[string]any),
		registrations: make(map[string]workbench.UpdateAssistantServiceRegistrationURL),
		shares:        make(map[uuid.UUID]workbench.ConversationShare),
		subscribers:   make(map[uuid.UUID]map[chan []byte]struct{}),
	}
}

func (st *store) createConversation(in workbench.NewConversation, ownerID string) workbench.Conversation {
	st.mu.Lock()
	defer st.mu.Unlock()

	conv := workbench.Conversation{
		ID:              uuid.New(),
		Title:           in.Title,
		OwnerID:         ownerID,
		Metadata:        in.Metadata,
		CreatedDatetime: time.Now().UTC(),
	}
	if conv.Title == "" {
		conv.Title = "New Conversation"
	}

	st.conversations[conv.ID] = &conversationRecord{
		conversation: conv,
		participants: make(map[string]workbench.ConversationParticipant),
		files:        make(map[string]*fileRecord),
	}

	return conv
}

func (st *store) getConversation(id uuid.UUID) (workbench.Conversation, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[id]
	if !ok {
		return workbench.Conversation{}, false
	}
	return rec.conversation, true
}

func (st *store) listConversations() []workbench.Conversation {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]workbench.Conversation, 0, len(st.conversations))
	for _, rec := range st.conversations {
		out = append(out, rec.conversation)
	}
	return out
}

func (st *store) updateConversationMetadata(id uuid.UUID, metadata map[string]any) (workbench.Conversation, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[id]
	if !ok {
		return workbench.Conversation{}, false
	}
	rec.conversation.Metadata = metadata
	return rec.conversation, true
}

func (st *store) deleteConversation(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.conversations[id]; !ok {
		return false
	}
	delete(st.conversations, id)
	return true
}

// duplicateConversation copies a conversation's messages and files into a
// fresh conversation, returning the new ID.
func (st *store) duplicateConversation(id uuid.UUID, in workbench.NewConversation) (uuid.UUID, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	src, ok := st.conversations[id]
	if !ok {
		return uuid.Nil, false
	}

	dup := &conversationRecord{
		conversation: workbench.Conversation{
			ID:              uuid.New(),
			Title:           src.conversation.Title,
			OwnerID:         src.conversation.OwnerID,
			ImportedFromID:  &src.conversation.ID,
			Metadata:        in.Metadata,
			CreatedDatetime: time.Now().UTC(),
		},
		participants: make(map[string]workbench.ConversationParticipant),
		files:        make(map[string]*fileRecord),
	}
	if in.Title != "" {
		dup.conversation.Title = in.Title
	}

	dup.messages = append(dup.messages, src.messages...)
	for name, f := range src.files {
		copied := &fileRecord{meta: f.meta}
		copied.meta.ConversationID = dup.conversation.ID
		copied.versions = append(copied.versions, f.versions...)
		dup.files[name] = copied
	}

	st.conversations[dup.conversation.ID] = dup
	return dup.conversation.ID, true
}

func (st *store) upsertParticipant(conversationID uuid.UUID, p workbench.ConversationParticipant) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return false
	}
	rec.participants[p.ID] = p
	return true
}

func (st *store) getParticipant(conversationID uuid.UUID, participantID string) (workbench.ConversationParticipant, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.ConversationParticipant{}, false
	}
	p, ok := rec.participants[participantID]
	return p, ok
}

func (st *store) listParticipants(conversationID uuid.UUID, includeInactive bool) ([]workbench.ConversationParticipant, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return nil, false
	}

	out := make([]workbench.ConversationParticipant, 0, len(rec.participants))
	for _, p := range rec.participants {
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, true
}

func (st *store) updateParticipant(conversationID uuid.UUID, participantID string, update workbench.UpdateParticipant, role workbench.ParticipantRole) (workbench.ConversationParticipant, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.ConversationParticipant{}, false
	}

	p, ok := rec.participants[participantID]
	if !ok {
		// The real service creates the participant record on first touch.
		p = workbench.ConversationParticipant{
			ID:     participantID,
			Role:   role,
			Active: true,
		}
	}

	if update.Status != nil {
		p.Status = update.Status
		p.StatusTimestamp = time.Now().UTC()
	}
	if update.Metadata != nil {
		p.Metadata = update.Metadata
	}

	rec.participants[participantID] = p
	return p, true
}

func (st *store) appendMessage(conversationID uuid.UUID, msg workbench.ConversationMessage) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return false
	}
	rec.messages = append(rec.messages, msg)
	return true
}

func (st *store) getMessage(conversationID, messageID uuid.UUID) (workbench.ConversationMessage, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.ConversationMessage{}, false
	}
	for _, m := range rec.messages {
		if m.ID == messageID {
			return m, true
		}
	}
	return workbench.ConversationMessage{}, false
}

// messageQuery mirrors the service's message listing parameters.
type messageQuery struct {
	messageTypes    []string
	participantIDs  []string
	participantRole string
	before          *uuid.UUID
	after           *uuid.UUID
	limit           int
}

func (st *store) listMessages(conversationID uuid.UUID, q messageQuery) ([]workbench.ConversationMessage, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return nil, false
	}

	msgs := rec.messages

	if q.before != nil {
		if idx := indexOfMessage(msgs, *q.before); idx >= 0 {
			msgs = msgs[:idx]
		}
	}
	if q.after != nil {
		if idx := indexOfMessage(msgs, *q.after); idx >= 0 {
			msgs = msgs[idx+1:]
		}
	}

	out := make([]workbench.ConversationMessage, 0, len(msgs))
	for _, m := range msgs {
		if len(q.messageTypes) > 0 && !containsString(q.messageTypes, string(m.MessageType)) {
			continue
		}
		if len(q.participantIDs) > 0 && !containsString(q.participantIDs, m.Sender.ParticipantID) {
			continue
		}
		if q.participantRole != "" && string(m.Sender.ParticipantRole) != q.participantRole {
			continue
		}
		out = append(out, m)
	}

	// Limit keeps the most recent messages, as the service does.
	if q.limit > 0 && len(out) > q.limit {
		out = out[len(out)-q.limit:]
	}

	return out, true
}

func indexOfMessage(msgs []workbench.ConversationMessage, id uuid.UUID) int {
	for i, m := range msgs {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// putFile stores a new version of a file, creating the record on first write.
func (st *store) putFile(conversationID uuid.UUID, filename, contentType, participantID string, content []byte) (workbench.File, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.File{}, false
	}

	now := time.Now().UTC()
	f, ok := rec.files[filename]
	if !ok {
		f = &fileRecord{
			meta: workbench.File{
				ConversationID:  conversationID,
				Filename:        filename,
				ParticipantID:   participantID,
				CreatedDatetime: now,
			},
		}
		rec.files[filename] = f
	}

	f.meta.CurrentVersion++
	f.meta.ContentType = contentType
	f.meta.FileSize = int64(len(content))
	f.meta.UpdatedDatetime = now

	f.versions = append(f.versions, fileVersion{
		info: workbench.FileVersion{
			Version:     f.meta.CurrentVersion,
			ContentType: contentType,
			FileSize:    int64(len(content)),
		},
		content: content,
	})

	return f.meta, true
}

func (st *store) getFile(conversationID uuid.UUID, filename string) (workbench.File, []byte, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.File{}, nil, false
	}
	f, ok := rec.files[filename]
	if !ok || len(f.versions) == 0 {
		return workbench.File{}, nil, false
	}
	return f.meta, f.versions[len(f.versions)-1].content, true
}

func (st *store) listFiles(conversationID uuid.UUID, prefix string) ([]workbench.File, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return nil, false
	}

	out := make([]workbench.File, 0, len(rec.files))
	for name, f := range rec.files {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, f.meta)
	}
	return out, true
}

func (st *store) fileVersions(conversationID uuid.UUID, filename string) (workbench.FileVersions, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return workbench.FileVersions{}, false
	}
	f, ok := rec.files[filename]
	if !ok {
		return workbench.FileVersions{}, false
	}

	versions := make([]workbench.FileVersion, 0, len(f.versions))
	for _, v := range f.versions {
		versions = append(versions, v.info)
	}

	return workbench.FileVersions{
		ConversationID: conversationID,
		Filename:       filename,
		CurrentVersion: f.meta.CurrentVersion,
		Versions:       versions,
	}, true
}

func (st *store) updateFileMetadata(conversationID uuid.UUID, filename string, metadata map[string]any) (workbench.FileVersions, bool) {
	st.mu.Lock()
	rec, ok := st.conversations[conversationID]
	if ok {
		if f, found := rec.files[filename]; found {
			f.meta.Metadata = metadata
		} else {
			ok = false
		}
	}
	st.mu.Unlock()

	if !ok {
		return workbench.FileVersions{}, false
	}
	return st.fileVersions(conversationID, filename)
}

func (st *store) deleteFile(conversationID uuid.UUID, filename string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec, ok := st.conversations[conversationID]
	if !ok {
		return false
	}
	if _, ok := rec.files[filename]; !ok {
		return false
	}
	delete(rec.files, filename)
	return true
}

func (st *store) createAssistant(in workbench.NewAssistant) workbench.Assistant {
	st.mu.Lock()
	defer st.mu.Unlock()

	a := workbench.Assistant{
		ID:                 uuid.New(),
		Name:               in.Name,
		AssistantServiceID: in.AssistantServiceID,
		Image:              in.Image,
		Metadata:           in.Metadata,
		CreatedDatetime:    time.Now().UTC(),
	}
	st.assistants[a.ID] = a
	return a
}

func (st *store) getAssistant(id uuid.UUID) (workbench.Assistant, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	a, ok := st.assistants[id]
	return a, ok
}

func (st *store) listAssistants() []workbench.Assistant {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]workbench.Assistant, 0, len(st.assistants))
	for _, a := range st.assistants {
		out = append(out, a)
	}
	return out
}

func (st *store) deleteAssistant(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.assistants[id]; !ok {
		return false
	}
	delete(st.assistants, id)
	delete(st.configs, id)
	return true
}

func (st *store) getConfig(id uuid.UUID) (map[string]any, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.assistants[id]; !ok {
		return nil, false
	}
	cfg, ok := st.configs[id]
	if !ok {
		cfg = map[string]any{}
	}
	return cfg, true
}

func (st *store) putConfig(id uuid.UUID, cfg map[string]any) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.assistants[id]; !ok {
		return false
	}
	st.configs[id] = cfg
	return true
}

func (st *store) putRegistration(id string, update workbench.UpdateAssistantServiceRegistrationURL) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.registrations[id] = update
}

func (st *store) listRegistrations() []workbench.AssistantServiceInfo {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]workbench.AssistantServiceInfo, 0, len(st.registrations))
	for id, reg := range st.registrations {
		out = append(out, workbench.AssistantServiceInfo{
			AssistantServiceID: id,
			Name:               reg.Name,
		})
	}
	return out
}

func (st *store) createShare(ownerID string, in workbench.NewConversationShare) workbench.ConversationShare {
	st.mu.Lock()
	defer st.mu.Unlock()

	share := workbench.ConversationShare{
		ID:                     uuid.New(),
		ConversationID:         in.ConversationID,
		Label:                  in.Label,
		ConversationPermission: in.ConversationPermission,
		CreatedByUserID:        ownerID,
		Metadata:               in.Metadata,
	}
	st.shares[share.ID] = share
	return share
}

// subscribe registers an event channel for a conversation. The returned
// cancel func removes the subscription and closes the channel.
func (st *store) subscribe(conversationID uuid.UUID) (chan []byte, func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ch := make(chan []byte, 16)
	subs, ok := st.subscribers[conversationID]
	if !ok {
		subs = make(map[chan []byte]struct{})
		st.subscribers[conversationID] = subs
	}
	subs[ch] = struct{}{}

	return ch, func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
	}
}

// publish delivers an encoded event frame to every subscriber of the
// conversation. Slow subscribers with full channels are skipped.
func (st *store) publish(conversationID uuid.UUID, frame []byte) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for ch := range st.subscribers[conversationID] {
		select {
		case ch <- frame:
		default:
		}
	}
}
