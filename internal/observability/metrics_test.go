package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/login", "POST", 200, 15*time.Millisecond)
	m.RecordRequest("/auth/login", "POST", 200, 5*time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHORIZED")
	m.RecordAuth("user", "login", "success")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/auth/login|POST|200"])
	assert.Equal(t, int64(20), snap.RequestMillis["/auth/login|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/auth/login|POST|UNAUTHORIZED"])
	assert.Equal(t, int64(1), snap.Auth["user|login|success"])

	snap.Auth["user|login|success"] = 99
	assert.Equal(t, int64(1), m.Snapshot().Auth["user|login|success"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordAuth("judge", "refresh", "rejected")
	assert.Empty(t, m.Snapshot().Auth)
}
