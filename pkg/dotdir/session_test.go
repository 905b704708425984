package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andrehe001/semanticworkbench/pkg/dotdir"
)

var _ = Describe("dotdir.Manager session", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadSessionState", func() {
		It("returns nil when no session file exists", func() {
			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a valid session state", func() {
			data := `{"conversation_id":"6a3e1c42-8f0a-4a3e-9d21-0f4c6f1d2b11","assistant_id":"e1b7a9d4-2c6f-4b8e-8a1d-9c3f5e7a0b22"}`
			err := os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte(data), 0o644)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
			Expect(state.ConversationID).To(Equal("6a3e1c42-8f0a-4a3e-9d21-0f4c6f1d2b11"))
			Expect(state.AssistantID).To(Equal("e1b7a9d4-2c6f-4b8e-8a1d-9c3f5e7a0b22"))
		})

		It("returns error for invalid JSON", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("not json"), 0o644)
			Expect(err).NotTo(HaveOccurred())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("SaveSession", func() {
		It("round-trips a session state", func() {
			in := &dotdir.SessionState{
				ConversationID: "6a3e1c42-8f0a-4a3e-9d21-0f4c6f1d2b11",
				AssistantID:    "e1b7a9d4-2c6f-4b8e-8a1d-9c3f5e7a0b22",
			}
			Expect(m.SaveSession(in, tmpDir)).To(Succeed())

			out, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("rejects a nil state", func() {
			Expect(m.SaveSession(nil, tmpDir)).NotTo(Succeed())
		})
	})

	Describe("ClearSession", func() {
		It("removes an existing session file", func() {
			in := &dotdir.SessionState{ConversationID: "6a3e1c42-8f0a-4a3e-9d21-0f4c6f1d2b11"}
			Expect(m.SaveSession(in, tmpDir)).To(Succeed())

			Expect(m.ClearSession(tmpDir)).To(Succeed())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("is a no-op when no session file exists", func() {
			Expect(m.ClearSession(tmpDir)).To(Succeed())
		})
	})
})
