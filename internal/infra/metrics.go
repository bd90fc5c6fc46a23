package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はアクセスエラー記録に関するPrometheusメトリクスを保持する。
type Metrics struct {
	registry     *prometheus.Registry
	events       prometheus.Counter
	sinkFailures *prometheus.CounterVec
}

// NewMetrics は専用レジストリを作成し、メトリクスを登録する。
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		events: factory.NewCounter(prometheus.CounterOpts{
			Name: "access_error_events_total",
			Help: "Total number of access denial events reported",
		}),
		sinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "access_error_sink_failures_total",
			Help: "Total number of failed appends per log sink",
		}, []string{"sink"}),
	}
}

// EventReported はイベント件数を1増やす。
func (m *Metrics) EventReported() {
	m.events.Inc()
}

// SinkFailed は記録先の書き込み失敗件数を1増やす。
func (m *Metrics) SinkFailed(sink string) {
	m.sinkFailures.WithLabelValues(sink).Inc()
}

// Handler は /metrics 用のHTTPハンドラを返す。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
