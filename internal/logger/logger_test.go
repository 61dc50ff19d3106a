package logger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithOperationTagsCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	WithOperation(zap.New(core), "fetch-curve").Info("attempt")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "fetch-curve", fields["operation"])

	id, ok := fields["correlation_id"].(string)
	require.True(t, ok, "correlation_id must be a string field")
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "correlation id must be a valid uuid")
}

func TestWithOperationFreshIDPerCall(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	WithOperation(base, "op").Info("first")
	WithOperation(base, "op").Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotEqual(t,
		entries[0].ContextMap()["correlation_id"],
		entries[1].ContextMap()["correlation_id"],
		"each operation run must get its own correlation id")
}

func TestWithTokenAddsTokenContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	WithToken(zap.New(core), "So11111111111111111111111111111111111111112", "SOL").Info("x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "So11111111111111111111111111111111111111112", fields["mint"])
	assert.Equal(t, "SOL", fields["symbol"])
}
