package askcmder

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/advisor"
	"github.com/farmergpt/farmergpt/pkg/language"
	"github.com/farmergpt/farmergpt/pkg/llm"
	"github.com/farmergpt/farmergpt/pkg/memory/local"
	testutils "github.com/farmergpt/farmergpt/pkg/utils/test"
)

var _ = Describe("ask", func() {
	var (
		model *testutils.MockProvider
		adv   *advisor.Advisor
		out   *bytes.Buffer
		cmder *askCommander
	)

	BeforeEach(func() {
		model = testutils.NewMockProvider("Remove affected leaves and spray neem oil.")
		mem, err := local.NewDriver(local.Config{})
		Expect(err).NotTo(HaveOccurred())
		adv, err = advisor.New(advisor.Config{
			Provider:    model,
			Memory:      mem,
			Transcriber: testutils.NewMockTranscriber("Why are my chilli leaves curling?"),
		})
		Expect(err).NotTo(HaveOccurred())

		out = &bytes.Buffer{}
		cmder = &askCommander{language: "auto", raw: true, out: out}
	})

	It("prints the answer", func() {
		Expect(cmder.ask(context.Background(), adv, "How do I treat aphids on tomato plants?")).To(Succeed())
		Expect(out.String()).To(Equal("Remove affected leaves and spray neem oil.\n"))
	})

	It("forwards the language and session", func() {
		cmder.language = "ml"
		cmder.sessionID = "plot-3"

		Expect(cmder.ask(context.Background(), adv, "When to harvest turmeric?")).To(Succeed())
		Expect(model.LastRequest().Messages[0].Content).To(ContainSubstring(string(language.Malayalam)))
	})

	It("prints what was heard for audio questions", func() {
		cmder.audioPath = "question.ogg"

		Expect(cmder.ask(context.Background(), adv, "")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Why are my chilli leaves curling?"))
	})

	It("rejects a question together with audio", func() {
		cmder.audioPath = "question.ogg"

		err := cmder.ask(context.Background(), adv, "and a typed question")
		Expect(err).To(MatchError(ContainSubstring("not both")))
	})

	It("rejects an empty question", func() {
		Expect(cmder.ask(context.Background(), adv, "  ")).NotTo(Succeed())
	})

	It("prints failure surrogates as the answer", func() {
		model.Result = llm.Failed(llm.FailureTransport, "connection refused")

		Expect(cmder.ask(context.Background(), adv, "Best fertilizer for paddy?")).To(Succeed())
		Expect(out.String()).To(HavePrefix("Exception: connection refused"))
	})
})

var _ = Describe("NewAskCmd", func() {
	It("answers end to end against an OpenAI-compatible endpoint", func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Irrigate at dawn."}}]}`))
		}))
		DeferCleanup(upstream.Close)

		var buf bytes.Buffer
		cmd := NewAskCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().Bool("debug", false, "")
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{
			"--config-dir", GinkgoT().TempDir(),
			"--base-url", upstream.URL,
			"--storage", "memory",
			"--raw",
			"When should I water maize?",
		})

		Expect(cmd.Execute()).To(Succeed())
		Expect(buf.String()).To(Equal("Irrigate at dawn.\n"))
	})
})
