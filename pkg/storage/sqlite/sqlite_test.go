package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
	"github.com/farmergpt/farmergpt/pkg/storage/sqlite"
)

func exchange(session, question string, at time.Time) *llm.Exchange {
	return &llm.Exchange{
		SessionID: session,
		Question:  question,
		Answer:    "- Spray neem oil",
		Language:  language.English,
		Source:    llm.SourceText,
		Model:     "z-ai/glm-4.5-air:free",
		CreatedAt: at,
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "farmergpt.db")

			s, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("is idempotent over an existing schema", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "farmergpt.db")

			first, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Insert(ctx, exchange("s1", "q", time.Time{}))).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			got, err := second.List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
		})
	})

	Describe("Insert", func() {
		It("assigns increasing ids", func() {
			a := exchange("s1", "aphids?", time.Time{})
			b := exchange("s1", "whiteflies?", time.Time{})
			Expect(driver.Insert(ctx, a)).To(Succeed())
			Expect(driver.Insert(ctx, b)).To(Succeed())
			Expect(a.ID).To(BeNumerically(">", 0))
			Expect(b.ID).To(BeNumerically(">", a.ID))
		})

		It("stamps created_at when missing", func() {
			ex := exchange("s1", "aphids?", time.Time{})
			Expect(driver.Insert(ctx, ex)).To(Succeed())
			Expect(ex.CreatedAt).NotTo(BeZero())
		})

		It("rejects nil", func() {
			Expect(driver.Insert(ctx, nil)).To(MatchError(storage.ErrNilExchange))
		})

		It("round-trips every field", func() {
			at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
			ex := exchange("s9", "ఆకు తెగులు?", at)
			ex.Language = language.Telugu
			ex.Source = llm.SourceAudio
			ex.Failed = true
			Expect(driver.Insert(ctx, ex)).To(Succeed())

			got, err := driver.List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal(ex.ID))
			Expect(got[0].SessionID).To(Equal("s9"))
			Expect(got[0].Question).To(Equal("ఆకు తెగులు?"))
			Expect(got[0].Language).To(Equal(language.Telugu))
			Expect(got[0].Source).To(Equal(llm.SourceAudio))
			Expect(got[0].Failed).To(BeTrue())
			Expect(got[0].CreatedAt.Equal(at)).To(BeTrue())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			for i, q := range []string{"one", "two", "three"} {
				Expect(driver.Insert(ctx, exchange("s1", q, base.Add(time.Duration(i)*time.Minute)))).To(Succeed())
			}
			Expect(driver.Insert(ctx, exchange("s2", "other", base.Add(time.Hour)))).To(Succeed())
		})

		It("returns newest first", func() {
			got, err := driver.List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(4))
			Expect(got[0].Question).To(Equal("other"))
			Expect(got[3].Question).To(Equal("one"))
		})

		It("applies the limit", func() {
			got, err := driver.List(ctx, storage.ListOptions{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
		})

		It("filters by session", func() {
			got, err := driver.List(ctx, storage.ListOptions{SessionID: "s1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))
			Expect(got[0].Question).To(Equal("three"))
		})
	})
})
