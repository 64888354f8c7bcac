package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calassist/internal/instrumentation"
)

func TestNewServerContext_RequiresAdder(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	assert.Error(t, err)
}

func TestServerContext_Options(t *testing.T) {
	audit := instrumentation.NewAuditLogger(nil)
	metrics := &instrumentation.Metrics{}

	sc := newTestServerContext(t)
	WithAuditLogger(audit)(sc)
	WithMetrics(metrics)(sc)

	assert.Same(t, audit, sc.AuditLogger())
	assert.Same(t, metrics, sc.Metrics())
	assert.NotNil(t, sc.Logger())
	assert.Equal(t, "team@example.com", sc.EventAdder().CalendarID())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	require.NoError(t, sc.Context().Err())
	assert.False(t, sc.IsShutdown())

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.ErrorIs(t, sc.Context().Err(), context.Canceled)

	require.NoError(t, sc.Shutdown(), "second Shutdown is a no-op")
}
