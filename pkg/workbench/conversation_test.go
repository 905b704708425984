package workbench_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

// conversationClient builds a ConversationClient pointed at the test server.
func conversationClient(serverURL, conversationID string) *workbench.ConversationClient {
	builder := workbench.NewServiceClientBuilder(serverURL, "svc-test", "key-test")
	return builder.ForConversation(uuid.New(), conversationID)
}

var _ = Describe("ConversationClient", func() {
	Describe("not-found handling", func() {
		It("treats 404 as success for Delete", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			Expect(client.Delete(context.Background())).To(Succeed())
		})

		It("treats 404 as success for DeleteFile", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			Expect(client.DeleteFile(context.Background(), "notes.md")).To(Succeed())
		})

		It("returns an empty participant list on 404", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			list, err := client.Participants(context.Background(), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Participants).To(BeEmpty())
		})

		It("reports false from FileExists on 404", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			exists, err := client.FileExists(context.Background(), "notes.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("raises a StatusError with status and body for other failures", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"detail":"no access"}`))
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			err := client.Delete(context.Background())

			var statusErr *workbench.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(string(statusErr.Body)).To(ContainSubstring("no access"))
		})
	})

	Describe("SendMessages", func() {
		It("issues one sequential request per message and preserves order", func() {
			var mu sync.Mutex
			var contents []string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var incoming workbench.NewConversationMessage
				Expect(json.NewDecoder(r.Body).Decode(&incoming)).To(Succeed())

				mu.Lock()
				contents = append(contents, incoming.Content)
				mu.Unlock()

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(workbench.ConversationMessage{
					ID:          uuid.New(),
					Content:     incoming.Content,
					MessageType: workbench.MessageTypeChat,
				})
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			list, err := client.SendMessages(context.Background(),
				workbench.NewConversationMessage{Content: "A"},
				workbench.NewConversationMessage{Content: "B"},
				workbench.NewConversationMessage{Content: "C"},
			)
			Expect(err).NotTo(HaveOccurred())

			Expect(contents).To(Equal([]string{"A", "B", "C"}))
			Expect(list.Messages).To(HaveLen(3))
			for i, want := range []string{"A", "B", "C"} {
				Expect(list.Messages[i].Content).To(Equal(want))
			}
		})

		It("aborts the sequence on the first failure", func() {
			var requests int
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				if requests == 2 {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(workbench.ConversationMessage{ID: uuid.New()})
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			_, err := client.SendMessages(context.Background(),
				workbench.NewConversationMessage{Content: "A"},
				workbench.NewConversationMessage{Content: "B"},
				workbench.NewConversationMessage{Content: "C"},
			)

			var statusErr *workbench.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(requests).To(Equal(2))
		})
	})

	Describe("Messages", func() {
		It("defaults to the chat message type and encodes filters", func() {
			var query string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				query = r.URL.RawQuery
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"messages": []}`))
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			_, err := client.Messages(context.Background(), workbench.MessageFilter{Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(ContainSubstring("message_type=chat"))
			Expect(query).To(ContainSubstring("limit=5"))
		})
	})

	Describe("files", func() {
		It("uploads via multipart PUT and returns the stored descriptor", func() {
			conversationID := uuid.New()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPut))
				Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())

				fileHeaders := r.MultipartForm.File["files"]
				Expect(fileHeaders).To(HaveLen(1))
				Expect(fileHeaders[0].Filename).To(Equal("notes.md"))

				content, err := fileHeaders[0].Open()
				Expect(err).NotTo(HaveOccurred())
				defer content.Close()
				uploaded, err := io.ReadAll(content)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(uploaded)).To(Equal("# notes"))

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(workbench.FileList{Files: []workbench.File{{
					ConversationID: conversationID,
					Filename:       "notes.md",
					CurrentVersion: 1,
					FileSize:       7,
				}}})
			}))
			defer server.Close()

			client := conversationClient(server.URL, conversationID.String())
			file, err := client.WriteFile(context.Background(), "notes.md", strings.NewReader("# notes"), "text/markdown")
			Expect(err).NotTo(HaveOccurred())
			Expect(file.Filename).To(Equal("notes.md"))
			Expect(file.CurrentVersion).To(Equal(1))
		})

		It("streams a file download until closed", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/octet-stream")
				fmt.Fprint(w, "file-content")
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			reader, err := client.ReadFile(context.Background(), "notes.md")
			Expect(err).NotTo(HaveOccurred())
			defer reader.Close()

			content, err := io.ReadAll(reader)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("file-content"))
		})

		It("resolves GetFile by exact filename among prefix matches", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("prefix")).To(Equal("notes.md"))
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(workbench.FileList{Files: []workbench.File{
					{Filename: "notes.md.bak"},
					{Filename: "notes.md"},
				}})
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			file, err := client.GetFile(context.Background(), "notes.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(file).NotTo(BeNil())
			Expect(file.Filename).To(Equal("notes.md"))
		})

		It("returns nil from GetFile when the file is absent", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"files": []}`))
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			file, err := client.GetFile(context.Background(), "notes.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(file).To(BeNil())
		})
	})

	Describe("Events", func() {
		It("consumes SSE events and releases the connection on Close", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Accept")).To(Equal("text/event-stream"))

				w.Header().Set("Content-Type", "text/event-stream")
				flusher, ok := w.(http.Flusher)
				Expect(ok).To(BeTrue())

				fmt.Fprint(w, "event: message.created\ndata: {\"content\":\"hello\"}\n\n")
				fmt.Fprint(w, ": keep-alive\n\n")
				fmt.Fprint(w, "event: message.created\ndata: {\"content\":\"world\"}\n\n")
				flusher.Flush()
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			stream, err := client.Events(context.Background(), server.URL+"/conversations/conv-1/events")
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			var contents []string
			for {
				event, err := stream.Next()
				Expect(err).NotTo(HaveOccurred())
				if event == nil {
					break
				}
				Expect(event.Type).To(Equal("message.created"))

				var payload map[string]string
				Expect(event.DecodeData(&payload)).To(Succeed())
				contents = append(contents, payload["content"])
			}
			Expect(contents).To(Equal([]string{"hello", "world"}))
		})

		It("stops the stream when the context is cancelled", func() {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)
				fmt.Fprint(w, "event: message.created\ndata: 1\n\n")
				flusher.Flush()
				<-release
			}))
			defer server.Close()
			defer close(release)

			ctx, cancel := context.WithCancel(context.Background())
			client := conversationClient(server.URL, "conv-1")
			stream, err := client.Events(ctx, server.URL+"/conversations/conv-1/events")
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			event, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(event.Type).To(Equal("message.created"))

			cancel()

			_, err = stream.Next()
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("response schema mismatches", func() {
		It("names the expected shape in the error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`"not an object"`))
			}))
			defer server.Close()

			client := conversationClient(server.URL, "conv-1")
			_, err := client.Get(context.Background())

			var schemaErr *workbench.SchemaError
			Expect(errors.As(err, &schemaErr)).To(BeTrue())
			Expect(schemaErr.Shape).To(ContainSubstring("Conversation"))
		})
	})
})

var _ = Describe("AssistantsClient", func() {
	It("treats 404 as success for Delete", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		builder := workbench.NewUserClientBuilder(server.URL, workbench.UserRequestHeaders{Token: "tok"})
		Expect(builder.ForAssistants().Delete(context.Background(), "asst-1")).To(Succeed())
	})
})

var _ = Describe("AssistantServiceClient", func() {
	It("updates the registration URL and lists services", func() {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.Method+" "+r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			if r.URL.Path == "/assistant-services" {
				Expect(r.URL.Query()["user_id"]).To(Equal([]string{"u1", "u2"}))
				w.Write([]byte(`{"assistant_service_infos": [{"assistant_service_id": "svc-1"}]}`))
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		builder := workbench.NewServiceClientBuilder(server.URL, "svc-1", "key-1")
		service := builder.ForService()
		defer service.Close()

		err := service.UpdateRegistrationURL(context.Background(), "svc-1", workbench.UpdateAssistantServiceRegistrationURL{
			URL:                    "https://assistant.example.test",
			OnlineExpiresInSeconds: 60,
		})
		Expect(err).NotTo(HaveOccurred())

		list, err := service.AssistantServices(context.Background(), []string{"u1", "u2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(list.AssistantServiceInfos).To(HaveLen(1))

		Expect(paths).To(Equal([]string{
			"PUT /assistant-service-registrations/svc-1",
			"GET /assistant-services",
		}))
	})
})
