// Package metrics exposes Prometheus collectors for the bus, the logger and
// the proctoring detector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/vigil/internal/event/topic"
)

const namespace = "vigil"

// noNamespace labels event names without a namespace segment.
const noNamespace = "none"

// Metrics holds all Prometheus metrics for the application.
// It implements event.Recorder, logging.Recorder and proctor.Recorder.
type Metrics struct {
	EventsEmitted       *prometheus.CounterVec
	EventListenerFaults *prometheus.CounterVec
	EventHistoryLen     prometheus.Gauge

	LogEntries        *prometheus.CounterVec
	LogListenerFaults prometheus.Counter
	LogHistoryLen     prometheus.Gauge

	Violations              *prometheus.CounterVec
	ViolationListenerFaults prometheus.Counter
	SessionsStarted         prometheus.Counter
	SessionsEnded           prometheus.Counter
	SessionActive           prometheus.Gauge

	ConfigReloads *prometheus.CounterVec
}

// New creates and registers all metrics on reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		EventsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Total number of events delivered by the bus, by name namespace",
		}, []string{"namespace"}),
		EventListenerFaults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_listener_faults_total",
			Help:      "Total number of bus listeners that failed or panicked",
		}, []string{"namespace"}),
		EventHistoryLen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_history_size",
			Help:      "Number of records retained in the bus history",
		}),
		LogEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_entries_total",
			Help:      "Total number of log entries recorded, by level",
		}, []string{"level"}),
		LogListenerFaults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_listener_faults_total",
			Help:      "Total number of log subscribers that failed or panicked",
		}),
		LogHistoryLen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_history_size",
			Help:      "Number of entries retained in the logger history",
		}),
		Violations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Total number of proctoring violations, by type",
		}, []string{"type"}),
		ViolationListenerFaults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violation_listener_faults_total",
			Help:      "Total number of violation listeners that failed or panicked",
		}),
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proctor_sessions_started_total",
			Help:      "Total number of proctoring sessions started",
		}),
		SessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proctor_sessions_ended_total",
			Help:      "Total number of proctoring sessions ended",
		}),
		SessionActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proctor_session_active",
			Help:      "1 while a proctoring session is running",
		}),
		ConfigReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Total number of configuration reloads, by result",
		}, []string{"result"}),
	}
}

// EventEmitted counts a delivered bus record.
func (m *Metrics) EventEmitted(name string) {
	m.EventsEmitted.WithLabelValues(namespaceOf(name)).Inc()
}

// EventListenerFault counts a failed bus listener.
func (m *Metrics) EventListenerFault(name string) {
	m.EventListenerFaults.WithLabelValues(namespaceOf(name)).Inc()
}

// EventHistorySize records the bus history length.
func (m *Metrics) EventHistorySize(n int) {
	m.EventHistoryLen.Set(float64(n))
}

// LogRecorded counts a log entry.
func (m *Metrics) LogRecorded(level string) {
	m.LogEntries.WithLabelValues(level).Inc()
}

// LogListenerFault counts a failed log subscriber.
func (m *Metrics) LogListenerFault() {
	m.LogListenerFaults.Inc()
}

// LogHistorySize records the logger history length.
func (m *Metrics) LogHistorySize(n int) {
	m.LogHistoryLen.Set(float64(n))
}

// ViolationRecorded counts a proctoring violation.
func (m *Metrics) ViolationRecorded(kind string) {
	m.Violations.WithLabelValues(kind).Inc()
}

// SessionStarted records a session start.
func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
	m.SessionActive.Set(1)
}

// SessionEnded records a session end.
func (m *Metrics) SessionEnded() {
	m.SessionsEnded.Inc()
	m.SessionActive.Set(0)
}

// ViolationListenerFault counts a failed violation listener.
func (m *Metrics) ViolationListenerFault() {
	m.ViolationListenerFaults.Inc()
}

// ConfigReloaded counts a configuration reload attempt.
func (m *Metrics) ConfigReloaded(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ConfigReloads.WithLabelValues(result).Inc()
}

// namespaceOf keeps label cardinality bounded by the name's first segment.
func namespaceOf(name string) string {
	if ns := topic.Name(name).Namespace(); ns != "" {
		return ns
	}
	return noNamespace
}
