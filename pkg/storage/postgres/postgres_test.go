package postgres_test

import (
	"context"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/storage"
	"github.com/farmergpt/farmergpt/pkg/storage/postgres"
)

var columns = []string{"id", "session_id", "question", "answer", "language", "source", "model", "failed", "created_at"}

var _ = Describe("Driver", func() {
	var (
		mock   pgxmock.PgxPoolIface
		driver *postgres.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		mock, err = pgxmock.NewPool()
		Expect(err).NotTo(HaveOccurred())
		driver = postgres.NewDriverWithDB(mock)
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
		mock.Close()
	})

	Describe("Insert", func() {
		It("inserts the exchange and reads back the id", func() {
			at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
			ex := &llm.Exchange{
				SessionID: "s1",
				Question:  "How do I treat aphids on tomato plants?",
				Answer:    "- Spray neem oil",
				Language:  language.English,
				Source:    llm.SourceText,
				Model:     "z-ai/glm-4.5-air:free",
				CreatedAt: at,
			}

			mock.ExpectQuery(`INSERT INTO conversations \(session_id,question,answer,language,source,model,failed,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8\) RETURNING id`).
				WithArgs("s1", ex.Question, ex.Answer, "English", "text", ex.Model, false, at).
				WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(42)))

			Expect(driver.Insert(ctx, ex)).To(Succeed())
			Expect(ex.ID).To(Equal(int64(42)))
		})

		It("stamps created_at when missing", func() {
			ex := &llm.Exchange{Question: "q", Answer: "a", Language: language.Auto}

			mock.ExpectQuery("INSERT INTO conversations").
				WithArgs("", "q", "a", "auto", "", "", false, pgxmock.AnyArg()).
				WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(1)))

			Expect(driver.Insert(ctx, ex)).To(Succeed())
			Expect(ex.CreatedAt).NotTo(BeZero())
		})

		It("wraps database errors", func() {
			mock.ExpectQuery("INSERT INTO conversations").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
					pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(errors.New("connection reset"))

			err := driver.Insert(ctx, &llm.Exchange{Question: "q", Answer: "a"})
			Expect(err).To(MatchError(ContainSubstring("inserting exchange: connection reset")))
		})

		It("rejects nil without touching the database", func() {
			Expect(driver.Insert(ctx, nil)).To(MatchError(storage.ErrNilExchange))
		})
	})

	Describe("List", func() {
		It("selects newest first with the default limit", func() {
			at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
			rows := mock.NewRows(columns).
				AddRow(int64(2), "s1", "q2", "a2", "Telugu", "audio", "m", false, at.Add(time.Minute)).
				AddRow(int64(1), "s1", "q1", "a1", "English", "text", "m", true, at)

			mock.ExpectQuery(`SELECT (.+) FROM conversations ORDER BY created_at DESC, id DESC LIMIT 50`).
				WillReturnRows(rows)

			got, err := driver.List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].ID).To(Equal(int64(2)))
			Expect(got[0].Language).To(Equal(language.Telugu))
			Expect(got[0].Source).To(Equal(llm.SourceAudio))
			Expect(got[1].Failed).To(BeTrue())
		})

		It("filters by session", func() {
			mock.ExpectQuery(`SELECT (.+) FROM conversations WHERE session_id = \$1 ORDER BY created_at DESC, id DESC LIMIT 5`).
				WithArgs("farmer-7").
				WillReturnRows(mock.NewRows(columns))

			got, err := driver.List(ctx, storage.ListOptions{SessionID: "farmer-7", Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})
	})
})

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("FARMERGPT_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("FARMERGPT_TEST_POSTGRES_DSN not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

var _ = Describe("Driver against a live database", func() {
	It("creates the schema and stores an exchange", func() {
		ctx := context.Background()
		driver, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		ex := &llm.Exchange{SessionID: "it", Question: "q", Answer: "a", Language: language.English}
		Expect(driver.Insert(ctx, ex)).To(Succeed())
		Expect(ex.ID).To(BeNumerically(">", 0))

		got, err := driver.List(ctx, storage.ListOptions{SessionID: "it", Limit: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
	})
})
