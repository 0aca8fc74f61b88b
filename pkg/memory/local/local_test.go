package local_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/memory"
	"github.com/farmergpt/farmergpt/pkg/memory/local"
)

func exchange(i int) llm.Exchange {
	return llm.Exchange{
		Question: fmt.Sprintf("question %d", i),
		Answer:   fmt.Sprintf("answer %d", i),
		Language: language.Auto,
	}
}

func questions(exs []llm.Exchange) []string {
	out := make([]string, 0, len(exs))
	for _, ex := range exs {
		out = append(out, ex.Question)
	}
	return out
}

var _ = Describe("Local memory driver", func() {
	var (
		driver *local.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		driver, err = local.NewDriver(local.Config{Window: 5})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("returns an empty window for an unknown session", func() {
		recent, err := driver.Recent(ctx, "nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(BeEmpty())
		Expect(driver.Sessions()).To(Equal(0))
	})

	It("keeps exchanges in append order", func() {
		for i := range 3 {
			Expect(driver.Append(ctx, "s1", exchange(i))).To(Succeed())
		}

		recent, err := driver.Recent(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(questions(recent)).To(Equal([]string{"question 0", "question 1", "question 2"}))
	})

	It("never holds more than the window and evicts the oldest first", func() {
		for i := range 6 {
			Expect(driver.Append(ctx, "s1", exchange(i))).To(Succeed())
		}

		recent, err := driver.Recent(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(5))
		Expect(questions(recent)).To(Equal([]string{
			"question 1", "question 2", "question 3", "question 4", "question 5",
		}))
	})

	It("isolates sessions", func() {
		Expect(driver.Append(ctx, "a", exchange(1))).To(Succeed())
		Expect(driver.Append(ctx, "b", exchange(2))).To(Succeed())

		a, _ := driver.Recent(ctx, "a")
		b, _ := driver.Recent(ctx, "b")
		Expect(questions(a)).To(Equal([]string{"question 1"}))
		Expect(questions(b)).To(Equal([]string{"question 2"}))
	})

	It("maps a blank session id onto the shared default window", func() {
		Expect(driver.Append(ctx, "", exchange(1))).To(Succeed())
		Expect(driver.Append(ctx, "  ", exchange(2))).To(Succeed())

		recent, err := driver.Recent(ctx, memory.DefaultSession)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(2))
	})

	It("returns copies that callers cannot mutate", func() {
		Expect(driver.Append(ctx, "s1", exchange(1))).To(Succeed())
		recent, _ := driver.Recent(ctx, "s1")
		recent[0].Answer = "tampered"

		again, _ := driver.Recent(ctx, "s1")
		Expect(again[0].Answer).To(Equal("answer 1"))
	})

	It("serializes concurrent appends to one session", func() {
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(driver.Append(ctx, "busy", exchange(i))).To(Succeed())
			}()
		}
		wg.Wait()

		recent, err := driver.Recent(ctx, "busy")
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(5))
	})

	It("evicts the least recently used session past MaxSessions", func() {
		small, err := local.NewDriver(local.Config{Window: 2, MaxSessions: 2})
		Expect(err).NotTo(HaveOccurred())

		Expect(small.Append(ctx, "a", exchange(1))).To(Succeed())
		Expect(small.Append(ctx, "b", exchange(2))).To(Succeed())
		Expect(small.Append(ctx, "c", exchange(3))).To(Succeed())

		Expect(small.Sessions()).To(Equal(2))
		a, _ := small.Recent(ctx, "a")
		Expect(a).To(BeEmpty())
	})

	It("refuses use after Close", func() {
		Expect(driver.Close()).To(Succeed())
		Expect(driver.Append(ctx, "s1", exchange(1))).To(MatchError(memory.ErrClosed))
		_, err := driver.Recent(ctx, "s1")
		Expect(err).To(MatchError(memory.ErrClosed))
	})
})
