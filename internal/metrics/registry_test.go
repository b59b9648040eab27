package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SetUnread(4)
	m.RecordAPICall("notifications.list", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "placement_unread_notifications 4")
	assert.Contains(t, body, `placement_api_requests_total{endpoint="notifications.list",status="200"} 1`)
}

func TestRegistriesAreIndependent(t *testing.T) {
	reg1, reg2 := prometheus.NewRegistry(), prometheus.NewRegistry()
	m1, m2 := NewMetrics(reg1), NewMetrics(reg2)
	m1.SetUnread(7)

	rec := httptest.NewRecorder()
	HandlerFor(reg2, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.NotSame(t, m1, m2)
	assert.Contains(t, rec.Body.String(), "placement_unread_notifications 0")
}

func TestServe_StopsWithContext(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg).SetUnread(2)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, reg) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "placement_unread_notifications 2")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestServe_InvalidAddress(t *testing.T) {
	err := Serve(context.Background(), "not-an-address", prometheus.NewRegistry())
	assert.Error(t, err)
}
