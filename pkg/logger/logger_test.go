package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/farmergpt/farmergpt/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records with attributes", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("answer generated", "session_id", "abc")

			Expect(buf.String()).To(ContainSubstring("answer generated"))
			Expect(buf.String()).To(ContainSubstring("session_id=abc"))
		})

		It("drops debug records by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("emits debug records when debug is enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("visible")

			Expect(buf.String()).To(ContainSubstring("visible"))
		})

		It("writes JSON records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("exchange recorded", "count", 3)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("exchange recorded"))
			Expect(parsed["count"]).To(BeNumerically("==", 3))
		})

		It("writes pretty records", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("server started")

			Expect(buf.String()).To(ContainSubstring("server started"))
		})

		It("writes to every configured writer", func() {
			var a, b bytes.Buffer
			l := logger.New(logger.WithWriters(&a, &b))
			l.Warn("queue full")

			Expect(a.String()).To(ContainSubstring("queue full"))
			Expect(b.String()).To(ContainSubstring("queue full"))
		})

		It("nests grouped attributes in JSON", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.WithGroup("model").Info("completed", "name", "glm")

			group, ok := decodeLine(&buf)["model"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["name"]).To(Equal("glm"))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
			Expect(func() {
				l.With("k", "v").WithGroup("g").Error("ignored")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("fans records out to each logger", func() {
			var text, js bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
			)
			multi.With("component", "worker").Info("stored")

			Expect(text.String()).To(ContainSubstring("component=worker"))
			Expect(decodeLine(&js)["component"]).To(Equal("worker"))
		})

		It("respects each handler's level", func() {
			var info, debug bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&info)),
				logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
			)
			multi.Debug("details")

			Expect(info.String()).To(BeEmpty())
			Expect(debug.String()).To(ContainSubstring("details"))
		})
	})
})
