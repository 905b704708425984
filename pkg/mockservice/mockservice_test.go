package mockservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andrehe001/semanticworkbench/pkg/logger"
	"github.com/andrehe001/semanticworkbench/pkg/sse"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

func TestMockService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mock Service Suite")
}

// doJSON sends a JSON request to the in-process app and decodes the response into out.
func doJSON(server *Server, method, path string, body any, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := server.app.Test(req, -1)
	if err != nil {
		return nil, err
	}

	if out != nil && resp.StatusCode < 300 {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

var _ = Describe("mock workbench service", func() {
	var server *Server

	BeforeEach(func() {
		server = NewServer(Config{ListenAddr: ":0"}, logger.Nop())
	})

	Describe("ping", func() {
		It("responds with pong", func() {
			var out string
			resp, err := doJSON(server, http.MethodGet, "/ping", nil, &out)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(out).To(Equal("pong"))
		})
	})

	Describe("conversations", func() {
		It("creates and fetches a conversation", func() {
			var created workbench.Conversation
			resp, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "planning"}, &created)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(created.ID).NotTo(Equal(uuid.Nil))
			Expect(created.Title).To(Equal("planning"))

			var fetched workbench.Conversation
			_, err = doJSON(server, http.MethodGet, "/conversations/"+created.ID.String(), nil, &fetched)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.ID).To(Equal(created.ID))
		})

		It("defaults the title when none is given", func() {
			var created workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{}, &created)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Title).To(Equal("New Conversation"))
		})

		It("lists created conversations", func() {
			for i := range 3 {
				_, err := doJSON(server, http.MethodPost, "/conversations",
					workbench.NewConversation{Title: fmt.Sprintf("conv-%d", i)}, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			var list workbench.ConversationList
			_, err := doJSON(server, http.MethodGet, "/conversations", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Conversations).To(HaveLen(3))
		})

		It("replaces metadata on patch", func() {
			var created workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "meta"}, &created)
			Expect(err).NotTo(HaveOccurred())

			var updated workbench.Conversation
			_, err = doJSON(server, http.MethodPatch, "/conversations/"+created.ID.String(),
				workbench.UpdateConversation{Metadata: map[string]any{"stage": "review"}}, &updated)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Metadata).To(HaveKeyWithValue("stage", "review"))
		})

		It("returns 404 for unknown conversations", func() {
			resp, err := doJSON(server, http.MethodGet, "/conversations/"+uuid.NewString(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})

		It("deletes a conversation", func() {
			var created workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "doomed"}, &created)
			Expect(err).NotTo(HaveOccurred())

			resp, err := doJSON(server, http.MethodDelete, "/conversations/"+created.ID.String(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNoContent))

			resp, err = doJSON(server, http.MethodGet, "/conversations/"+created.ID.String(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})

		It("duplicates a conversation with its messages", func() {
			var created workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "source"}, &created)
			Expect(err).NotTo(HaveOccurred())

			_, err = doJSON(server, http.MethodPost, "/conversations/"+created.ID.String()+"/messages",
				workbench.NewConversationMessage{Content: "hello"}, nil)
			Expect(err).NotTo(HaveOccurred())

			var result workbench.ConversationImportResult
			_, err = doJSON(server, http.MethodPost, "/conversations/"+created.ID.String(),
				workbench.NewConversation{}, &result)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ConversationIDs).To(HaveLen(1))
			Expect(result.ConversationIDs[0]).NotTo(Equal(created.ID))

			var list workbench.ConversationMessageList
			_, err = doJSON(server, http.MethodGet,
				"/conversations/"+result.ConversationIDs[0].String()+"/messages", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Messages).To(HaveLen(1))
			Expect(list.Messages[0].Content).To(Equal("hello"))
		})
	})

	Describe("messages", func() {
		var conv workbench.Conversation

		BeforeEach(func() {
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "chatty"}, &conv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates a chat message with defaults", func() {
			var msg workbench.ConversationMessage
			_, err := doJSON(server, http.MethodPost, "/conversations/"+conv.ID.String()+"/messages",
				workbench.NewConversationMessage{Content: "hi"}, &msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.MessageType).To(Equal(workbench.MessageTypeChat))
			Expect(msg.ContentType).To(Equal("text/plain"))
			Expect(msg.Sender.ParticipantRole).To(Equal(workbench.ParticipantRoleUser))
		})

		It("attributes messages to the assistant identity header", func() {
			assistantID := uuid.NewString()
			data, err := json.Marshal(workbench.NewConversationMessage{Content: "from assistant"})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost,
				"/conversations/"+conv.ID.String()+"/messages", bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(workbench.HeaderAssistantID, assistantID)

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			var msg workbench.ConversationMessage
			Expect(json.NewDecoder(resp.Body).Decode(&msg)).To(Succeed())
			Expect(msg.Sender.ParticipantID).To(Equal(assistantID))
			Expect(msg.Sender.ParticipantRole).To(Equal(workbench.ParticipantRoleAssistant))
		})

		It("filters listings by message type", func() {
			for _, mt := range []workbench.MessageType{
				workbench.MessageTypeChat,
				workbench.MessageTypeNote,
				workbench.MessageTypeChat,
			} {
				_, err := doJSON(server, http.MethodPost, "/conversations/"+conv.ID.String()+"/messages",
					workbench.NewConversationMessage{Content: "x", MessageType: mt}, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			var list workbench.ConversationMessageList
			_, err := doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/messages?message_type=note", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Messages).To(HaveLen(1))
			Expect(list.Messages[0].MessageType).To(Equal(workbench.MessageTypeNote))
		})

		It("keeps the most recent messages when a limit applies", func() {
			for i := range 5 {
				_, err := doJSON(server, http.MethodPost, "/conversations/"+conv.ID.String()+"/messages",
					workbench.NewConversationMessage{Content: fmt.Sprintf("m%d", i)}, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			var list workbench.ConversationMessageList
			_, err := doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/messages?limit=2", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Messages).To(HaveLen(2))
			Expect(list.Messages[0].Content).To(Equal("m3"))
			Expect(list.Messages[1].Content).To(Equal("m4"))
		})

		It("fetches a message by id", func() {
			var created workbench.ConversationMessage
			_, err := doJSON(server, http.MethodPost, "/conversations/"+conv.ID.String()+"/messages",
				workbench.NewConversationMessage{Content: "find me"}, &created)
			Expect(err).NotTo(HaveOccurred())

			var fetched workbench.ConversationMessage
			_, err = doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/messages/"+created.ID.String(), nil, &fetched)
			Expect(err).NotTo(HaveOccurred())
			Expect(fetched.Content).To(Equal("find me"))
		})
	})

	Describe("participants", func() {
		var conv workbench.Conversation

		BeforeEach(func() {
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "crowded"}, &conv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates the participant record on first update", func() {
			status := "thinking"
			var p workbench.ConversationParticipant
			_, err := doJSON(server, http.MethodPatch,
				"/conversations/"+conv.ID.String()+"/participants/me",
				workbench.UpdateParticipant{Status: &status}, &p)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal("local-user"))
			Expect(*p.Status).To(Equal("thinking"))

			var list workbench.ConversationParticipantList
			_, err = doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/participants", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Participants).To(HaveLen(1))
		})

		It("returns 404 for an unknown participant", func() {
			resp, err := doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/participants/ghost", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("files", func() {
		var conv workbench.Conversation

		putFile := func(filename, contentType, content string) *http.Response {
			var body bytes.Buffer
			writer := multipart.NewWriter(&body)
			header := make(map[string][]string)
			header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="files"; filename=%q`, filename)}
			header["Content-Type"] = []string{contentType}
			part, err := writer.CreatePart(header)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte(content))
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			req, err := http.NewRequest(http.MethodPut,
				"/conversations/"+conv.ID.String()+"/files", &body)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", writer.FormDataContentType())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		BeforeEach(func() {
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "attachments"}, &conv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("stores an uploaded file and serves it back", func() {
			resp := putFile("notes.txt", "text/plain", "remember the milk")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var list workbench.FileList
			Expect(json.NewDecoder(resp.Body).Decode(&list)).To(Succeed())
			Expect(list.Files).To(HaveLen(1))
			Expect(list.Files[0].Filename).To(Equal("notes.txt"))
			Expect(list.Files[0].CurrentVersion).To(Equal(1))

			req, err := http.NewRequest(http.MethodGet,
				"/conversations/"+conv.ID.String()+"/files/notes.txt", nil)
			Expect(err).NotTo(HaveOccurred())
			got, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer got.Body.Close()

			Expect(got.Header.Get("Content-Type")).To(Equal("text/plain"))
			content, err := io.ReadAll(got.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("remember the milk"))
		})

		It("bumps the version on re-upload", func() {
			putFile("notes.txt", "text/plain", "v1").Body.Close()
			putFile("notes.txt", "text/plain", "v2 with more").Body.Close()

			var versions workbench.FileVersions
			_, err := doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/files/notes.txt/versions", nil, &versions)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions.CurrentVersion).To(Equal(2))
			Expect(versions.Versions).To(HaveLen(2))
		})

		It("filters listings by prefix", func() {
			putFile("logs/a.txt", "text/plain", "a").Body.Close()
			putFile("logs/b.txt", "text/plain", "b").Body.Close()
			putFile("readme.md", "text/markdown", "hi").Body.Close()

			var list workbench.FileList
			_, err := doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/files?prefix=logs/", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Files).To(HaveLen(2))
		})

		It("deletes a file", func() {
			putFile("notes.txt", "text/plain", "bye").Body.Close()

			resp, err := doJSON(server, http.MethodDelete,
				"/conversations/"+conv.ID.String()+"/files/notes.txt", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNoContent))

			resp, err = doJSON(server, http.MethodGet,
				"/conversations/"+conv.ID.String()+"/files/notes.txt/versions", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("assistants", func() {
		It("creates, configures, and deletes an assistant", func() {
			var created workbench.Assistant
			_, err := doJSON(server, http.MethodPost, "/assistants",
				workbench.NewAssistant{Name: "echo", AssistantServiceID: "echo.example"}, &created)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(Equal(uuid.Nil))

			var cfg workbench.ConfigResponse
			_, err = doJSON(server, http.MethodPut, "/assistants/"+created.ID.String()+"/config",
				workbench.ConfigPutRequest{Config: map[string]any{"greeting": "yo"}}, &cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = doJSON(server, http.MethodGet, "/assistants/"+created.ID.String()+"/config", nil, &cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Config).To(HaveKeyWithValue("greeting", "yo"))

			resp, err := doJSON(server, http.MethodDelete, "/assistants/"+created.ID.String(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNoContent))

			resp, err = doJSON(server, http.MethodGet, "/assistants/"+created.ID.String(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("assistant service registrations", func() {
		It("records a registration and lists it", func() {
			resp, err := doJSON(server, http.MethodPut, "/assistant-service-registrations/echo.example",
				workbench.UpdateAssistantServiceRegistrationURL{
					Name:                   "Echo",
					URL:                    "http://localhost:3001",
					OnlineExpiresInSeconds: 60,
				}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var list workbench.AssistantServiceInfoList
			_, err = doJSON(server, http.MethodGet, "/assistant-services", nil, &list)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.AssistantServiceInfos).To(HaveLen(1))
			Expect(list.AssistantServiceInfos[0].AssistantServiceID).To(Equal("echo.example"))
			Expect(list.AssistantServiceInfos[0].Name).To(Equal("Echo"))
		})
	})

	Describe("event stream", func() {
		It("delivers published events to subscribers as SSE frames", func() {
			var conv workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "live"}, &conv)
			Expect(err).NotTo(HaveOccurred())

			events, cancel := server.store.subscribe(conv.ID)

			pr, pw := io.Pipe()
			go server.streamEvents(pw, events, cancel)

			_, err = doJSON(server, http.MethodPost, "/conversations/"+conv.ID.String()+"/messages",
				workbench.NewConversationMessage{Content: "ping"}, nil)
			Expect(err).NotTo(HaveOccurred())

			reader := sse.NewReader(pr)
			ev, err := reader.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal("message.created"))

			var payload conversationEvent
			Expect(ev.DecodeData(&payload)).To(Succeed())
			Expect(payload.ConversationID).To(Equal(conv.ID))
			Expect(payload.Data).To(HaveKey("message"))

			pr.Close()
		})

		It("rejects streams for unknown conversations", func() {
			resp, err := doJSON(server, http.MethodGet,
				"/conversations/"+uuid.NewString()+"/events", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})

		It("stops publishing to cancelled subscriptions", func() {
			var conv workbench.Conversation
			_, err := doJSON(server, http.MethodPost, "/conversations",
				workbench.NewConversation{Title: "quiet"}, &conv)
			Expect(err).NotTo(HaveOccurred())

			events, cancel := server.store.subscribe(conv.ID)
			cancel()

			// A publish after cancel must not panic or block.
			server.publishEvent(conv.ID, "message.created", nil)

			_, open := <-events
			Expect(open).To(BeFalse())
		})
	})
})

var _ = Describe("encodeFrame", func() {
	It("renders event, id, and single-line data fields", func() {
		payload := conversationEvent{
			ID:    uuid.New(),
			Event: "message.created",
		}
		frame, err := encodeFrame("message.created", payload)
		Expect(err).NotTo(HaveOccurred())

		text := string(frame)
		Expect(text).To(HavePrefix("event: message.created\n"))
		Expect(text).To(ContainSubstring("id: " + payload.ID.String() + "\n"))
		Expect(text).To(HaveSuffix("\n\n"))
	})
})
