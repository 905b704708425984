package workbench_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

var _ = Describe("Client builders", func() {
	var (
		server   *httptest.Server
		received *http.Request
	)

	BeforeEach(func() {
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clone := r.Clone(r.Context())
			received = clone
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"conversations": []}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("ServiceClientBuilder", func() {
		It("attaches service identity headers to every request", func() {
			builder := workbench.NewServiceClientBuilder(server.URL, "svc-1", "key-1")

			_, err := builder.ForConversations().List(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(received.Header.Get(workbench.HeaderAssistantServiceID)).To(Equal("svc-1"))
			Expect(received.Header.Get(workbench.HeaderAPIKey)).To(Equal("key-1"))
			Expect(received.Header.Get(workbench.HeaderAssistantID)).To(BeEmpty())
		})

		It("adds the assistant identity when acting as an assistant", func() {
			assistantID := uuid.New()
			builder := workbench.NewServiceClientBuilder(server.URL, "svc-1", "key-1")

			_, err := builder.ForAssistantConversations(assistantID).List(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(received.Header.Get(workbench.HeaderAssistantID)).To(Equal(assistantID.String()))
		})
	})

	Describe("UserClientBuilder", func() {
		It("attaches the bearer token to every request", func() {
			builder := workbench.NewUserClientBuilder(server.URL, workbench.UserRequestHeaders{Token: "tok-123"})

			_, err := builder.ForConversations().List(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(received.Header.Get("Authorization")).To(Equal("Bearer tok-123"))
		})
	})

	Describe("correlation identifier", func() {
		It("propagates the context's correlation ID", func() {
			builder := workbench.NewUserClientBuilder(server.URL, workbench.UserRequestHeaders{Token: "tok"})
			ctx := workbench.WithCorrelationID(context.Background(), "corr-42")

			_, err := builder.ForConversations().List(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(received.Header.Get(workbench.HeaderCorrelationID)).To(Equal("corr-42"))
		})

		It("sends an empty value when no correlation ID is set", func() {
			builder := workbench.NewUserClientBuilder(server.URL, workbench.UserRequestHeaders{Token: "tok"})

			_, err := builder.ForConversations().List(context.Background())
			Expect(err).NotTo(HaveOccurred())

			values := received.Header.Values(workbench.HeaderCorrelationID)
			Expect(values).To(Equal([]string{""}))
		})
	})
})

var _ = Describe("Identity headers", func() {
	It("round-trips service identity through HTTP headers", func() {
		headers := workbench.AssistantServiceRequestHeaders{
			AssistantServiceID: "svc-9",
			APIKey:             "key-9",
		}

		Expect(workbench.AssistantServiceRequestHeadersFrom(headers.ToHeaders())).To(Equal(headers))
	})

	It("round-trips assistant identity through HTTP headers", func() {
		headers := workbench.AssistantRequestHeaders{AssistantID: uuid.New()}

		Expect(workbench.AssistantRequestHeadersFrom(headers.ToHeaders())).To(Equal(headers))
	})

	It("yields a zero assistant ID for an unparseable header", func() {
		recovered := workbench.AssistantRequestHeadersFrom(http.Header{
			workbench.HeaderAssistantID: {"not-a-uuid"},
		})
		Expect(recovered.AssistantID).To(Equal(uuid.Nil))
	})
})
