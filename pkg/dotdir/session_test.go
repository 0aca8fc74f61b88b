package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/dotdir"
)

var _ = Describe("dotdir.Manager session", func() {
	var (
		dir string
		m   *dotdir.Manager
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	It("returns nil when no session has been saved", func() {
		state, err := m.LoadSession(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("round-trips a session", func() {
		started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		Expect(m.SaveSession(&dotdir.SessionState{ID: "farmer-7", Language: "Telugu", StartedAt: started}, dir)).To(Succeed())

		state, err := m.LoadSession(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.ID).To(Equal("farmer-7"))
		Expect(state.Language).To(Equal("Telugu"))
		Expect(state.StartedAt.Equal(started)).To(BeTrue())
	})

	It("rejects nil state", func() {
		Expect(m.SaveSession(nil, dir)).To(HaveOccurred())
	})

	It("returns an error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600)).To(Succeed())
		_, err := m.LoadSession(dir)
		Expect(err).To(MatchError(ContainSubstring("parsing session state")))
	})

	It("clears the session and tolerates a missing file", func() {
		Expect(m.SaveSession(&dotdir.SessionState{ID: "x"}, dir)).To(Succeed())
		Expect(m.ClearSession(dir)).To(Succeed())
		Expect(filepath.Join(dir, "session.json")).NotTo(BeAnExistingFile())
		Expect(m.ClearSession(dir)).To(Succeed())
	})
})
