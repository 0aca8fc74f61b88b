package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("runs fn and reports success", func() {
		var buf bytes.Buffer
		ran := false

		err := cliui.Step(&buf, "Connecting to storage", func() error {
			ran = true
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(ran).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring("Connecting to storage"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
	})

	It("returns fn's error and marks the step failed", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "Pinging redis", func() error { return boom })

		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds with one decimal otherwise", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("KeyValue", func() {
	It("marks unset values", func() {
		Expect(cliui.KeyValue("provider.api_key", "")).To(ContainSubstring("<not set>"))
	})

	It("includes the value", func() {
		Expect(cliui.KeyValue("api.listen", ":8000")).To(ContainSubstring(":8000"))
	})
})

var _ = Describe("RenderAnswer", func() {
	It("keeps the answer text", func() {
		out := cliui.RenderAnswer("Spray neem oil on the leaves.", false)
		Expect(out).To(ContainSubstring("neem oil"))
	})

	It("passes degraded answers through without markdown", func() {
		out := cliui.RenderAnswer("Exception: connection refused", true)
		Expect(out).To(ContainSubstring("Exception: connection refused"))
	})
})
