package metrics_test

import (
	"io"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/farmergpt/farmergpt/pkg/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.New()
	})

	It("counts exchanges by outcome", func() {
		m.ObserveExchange(metrics.OutcomeAnswered, "text")
		m.ObserveExchange(metrics.OutcomeAnswered, "text")
		m.ObserveExchange(metrics.OutcomeFailed, "audio")

		Expect(testutil.CollectAndCount(m.Registry(), "farmergpt_exchanges_total")).To(Equal(2))
	})

	It("counts persistence failures and drops", func() {
		m.PersistenceFailed("insert")
		m.JobDropped()
		m.JobDropped()

		Expect(testutil.CollectAndCount(m.Registry(), "farmergpt_persistence_failures_total")).To(Equal(1))
		Expect(testutil.CollectAndCount(m.Registry(), "farmergpt_persistence_dropped_total")).To(Equal(1))
	})

	It("serves the text exposition format", func() {
		m.ObserveModelCall("openai", true, 1500*time.Millisecond)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)

		Expect(rec.Code).To(Equal(200))
		Expect(string(body)).To(ContainSubstring(`farmergpt_model_request_duration_seconds_count{outcome="answered",provider="openai"} 1`))
		Expect(string(body)).To(ContainSubstring("go_goroutines"))
	})

	It("tolerates a nil receiver", func() {
		var nilMetrics *metrics.Metrics
		Expect(func() {
			nilMetrics.ObserveExchange(metrics.OutcomeAnswered, "text")
			nilMetrics.ObserveModelCall("openai", false, time.Second)
			nilMetrics.PersistenceFailed("publish")
			nilMetrics.JobDropped()
		}).NotTo(Panic())
	})
})
