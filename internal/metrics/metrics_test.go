package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vigil/internal/event"
	"github.com/dshills/vigil/internal/logging"
	"github.com/dshills/vigil/internal/proctor"
)

var (
	_ event.Recorder   = (*Metrics)(nil)
	_ logging.Recorder = (*Metrics)(nil)
	_ proctor.Recorder = (*Metrics)(nil)
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

func TestMetrics_EventsByNamespace(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.EventEmitted("user:login")
	m.EventEmitted("user:logout")
	m.EventEmitted("tick")
	m.EventListenerFault("user:login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues(noNamespace)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventListenerFaults.WithLabelValues("user")))
}

func TestMetrics_Gauges(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.EventHistorySize(12)
	m.LogHistorySize(3)
	m.SessionStarted()

	assert.Equal(t, 12.0, testutil.ToFloat64(m.EventHistoryLen))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LogHistoryLen))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionActive))

	m.SessionEnded()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEnded))
}

func TestMetrics_ConfigReloads(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.ConfigReloaded(nil)
	m.ConfigReloaded(errors.New("bad toml"))
	m.ConfigReloaded(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("error")))
}

func TestMetrics_WiredIntoServices(t *testing.T) {
	m, reg := newTestMetrics(t)

	bus := event.NewBus(event.WithRecorder(m))
	bus.Emit("exam:started", nil)
	bus.ClearHistory()

	logger := logging.New(logging.WithRecorder(m))
	logger.Info("a")
	logger.Error("b")
	logger.Error("c")

	target := proctor.NewEventTarget()
	detector := proctor.NewDetector(target, proctor.WithRecorder(m))
	detector.StartSession(proctor.ConfigPatch{})
	target.Dispatch(&proctor.Signal{Kind: proctor.SignalBlur})
	detector.EndSession()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues("exam")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsEmitted.WithLabelValues("sys")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EventHistoryLen))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LogEntries.WithLabelValues("ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Violations.WithLabelValues("window-blur")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		names[mf.GetName()] = mf
	}
	require.Contains(t, names, "vigil_log_entries_total")
	assert.Equal(t, dto.MetricType_COUNTER, names["vigil_log_entries_total"].GetType())
	assert.Len(t, names["vigil_log_entries_total"].GetMetric(), 2)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
