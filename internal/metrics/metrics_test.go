package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	m := Init(true)
	assert.NotNil(t, m)

	// Type assert to concrete Metrics to access fields
	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.AuthorizationsStartedTotal)
	assert.NotNil(t, metrics.TokenExchangesTotal)
	assert.NotNil(t, metrics.ResourceCallsTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	// Type assert to NoopMetrics
	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestInitIdempotent(t *testing.T) {
	m1 := Init(true)
	m2 := Init(true)
	assert.Equal(t, m1, m2, "Init(true) should return the same instance")
}

func TestRecordAuthorizationStarted(t *testing.T) {
	m := Init(true)

	m.RecordAuthorizationStarted()
	// No error means success - prometheus metrics don't return errors for recording
}

func TestRecordAuthorizationCallback(t *testing.T) {
	m := Init(true)

	m.RecordAuthorizationCallback(true)
	m.RecordAuthorizationCallback(false)
}

func TestRecordTokenExchange(t *testing.T) {
	m := Init(true)

	m.RecordTokenExchange("authorization_code", true)
	m.RecordTokenExchange("refresh_token", false)
}

func TestRecordResourceCall(t *testing.T) {
	m := Init(true)

	m.RecordResourceCall("success")
	m.RecordResourceCall("reauth_required")
}

func TestRecordLogout(t *testing.T) {
	m := Init(true)

	m.RecordLogout()
}

func TestNoopMetricsRecorder(t *testing.T) {
	var m Recorder = NewNoopMetrics()

	// Every recorder method is a safe no-op
	m.RecordAuthorizationStarted()
	m.RecordAuthorizationCallback(true)
	m.RecordTokenExchange("refresh_token", false)
	m.RecordResourceCall("transport_error")
	m.RecordLogout()
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/status", normalizePath("/status"))
	assert.Equal(t, "unmatched", normalizePath(""))
}
