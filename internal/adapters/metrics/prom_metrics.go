package metrics

import (
	"strconv"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/interfaces"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PromMetrics - метрики сервиса в Prometheus
type PromMetrics struct {
	tagReads      *prometheus.CounterVec
	readDuration  prometheus.Histogram
	connTests     *prometheus.CounterVec
	conditionsMet prometheus.Counter
	endpoints     prometheus.Gauge
}

// NewRegistry создает отдельный реестр метрик с метриками процесса и рантайма
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewPromMetrics регистрирует метрики в переданном реестре
func NewPromMetrics(reg prometheus.Registerer) interfaces.Metrics {
	m := &PromMetrics{
		tagReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plcgw_tag_reads_total",
			Help: "Tag reads by outcome status.",
		}, []string{"status"}),
		readDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plcgw_tag_read_duration_seconds",
			Help:    "Duration of a single tag read including handle setup and teardown.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		connTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plcgw_connection_tests_total",
			Help: "Connection tests by result.",
		}, []string{"result"}),
		conditionsMet: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plcgw_monitor_conditions_met_total",
			Help: "Monitor conditions evaluated as met.",
		}),
		endpoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plcgw_endpoints",
			Help: "Number of registered endpoints.",
		}),
	}

	reg.MustRegister(m.tagReads, m.readDuration, m.connTests, m.conditionsMet, m.endpoints)
	return m
}

func (m *PromMetrics) ObserveRead(status string, d time.Duration) {
	m.tagReads.WithLabelValues(status).Inc()
	m.readDuration.Observe(d.Seconds())
}

func (m *PromMetrics) ConnectionTested(ok bool) {
	m.connTests.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *PromMetrics) ConditionsMet(n int) {
	if n > 0 {
		m.conditionsMet.Add(float64(n))
	}
}

func (m *PromMetrics) SetEndpoints(n int) {
	m.endpoints.Set(float64(n))
}

// Nop не собирает метрики
type Nop struct{}

func (Nop) ObserveRead(string, time.Duration) {}
func (Nop) ConnectionTested(bool)             {}
func (Nop) ConditionsMet(int)                 {}
func (Nop) SetEndpoints(int)                  {}

var (
	_ interfaces.Metrics = (*PromMetrics)(nil)
	_ interfaces.Metrics = Nop{}
)
