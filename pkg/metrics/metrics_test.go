package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopMetrics(t *testing.T) {
	m := NewNop()
	require.NotNil(t, m)

	require.NotPanics(t, func() {
		m.RecordTick("A")
		m.RecordPublish("A", "Status", errors.New("boom"), time.Second)
		m.RecordSkipped("A", "Humidity")
		m.RecordConnectionState("A", "CONNECTED")
		m.RecordReconnectAttempt("A", time.Second)
		m.SetActiveLoops(3)
	})
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordTick("Line_01")
	p.RecordTick("Line_01")
	p.RecordPublish("Line_01", "Status", nil, 5*time.Millisecond)
	p.RecordPublish("Line_01", "Status", errors.New("timeout"), time.Second)
	p.RecordSkipped("Line_01", "Humidity")
	p.RecordConnectionState("Line_01", "CONNECTED")
	p.RecordReconnectAttempt("Line_01", 2*time.Second)
	p.SetActiveLoops(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.ticks.WithLabelValues("Line_01")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.publishes.WithLabelValues("Line_01", "Status", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.publishes.WithLabelValues("Line_01", "Status", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.skipped.WithLabelValues("Line_01", "Humidity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.connectionState.WithLabelValues("Line_01", "CONNECTED")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.connectionState.WithLabelValues("Line_01", "RECONNECTING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.reconnects.WithLabelValues("Line_01")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.activeLoops))

	p.RecordConnectionState("Line_01", "RECONNECTING")
	assert.Equal(t, 0.0, testutil.ToFloat64(p.connectionState.WithLabelValues("Line_01", "CONNECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.connectionState.WithLabelValues("Line_01", "RECONNECTING")))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.True(t, strings.HasPrefix(f.GetName(), DefaultNamespace+"_"), f.GetName())
	}
}

func TestPrometheusCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "fleet")

	require.NotPanics(t, func() {
		p.RecordTick("A")
		p.RecordTick("B")
		p.SetActiveLoops(1)
	})

	count, err := testutil.GatherAndCount(reg, "fleet_loop_ticks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")
	p.SetActiveLoops(2)

	srv := NewServer(":0", reg, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sensorsim_fleet_active_loops 2")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg, "").SetActiveLoops(1)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer("", reg, nil).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "sensorsim_fleet_active_loops 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
