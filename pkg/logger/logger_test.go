package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// swapGlobal installs an observed logger so tests can assert on emitted
// entries, restoring the previous global afterwards.
func swapGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := globalLogger
	globalLogger = zap.New(core)
	t.Cleanup(func() { globalLogger = prev })
	return logs
}

func TestWithContextAttachesFields(t *testing.T) {
	logs := swapGlobal(t)

	ctx := context.WithValue(context.Background(), HookKey, "mysql")
	ctx = context.WithValue(ctx, ConnIDKey, "mysql_default")
	ctx = context.WithValue(ctx, TransferKey, "sql_to_mysql")

	WithContext(ctx).Info("resolved")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "mysql", fields["hook"])
	assert.Equal(t, "mysql_default", fields["conn_id"])
	assert.Equal(t, "sql_to_mysql", fields["transfer"])
}

func TestWithContextWithoutValues(t *testing.T) {
	logs := swapGlobal(t)

	WithContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].ContextMap())
}

func TestSyncBeforeInit(t *testing.T) {
	prev := globalLogger
	globalLogger = nil
	t.Cleanup(func() { globalLogger = prev })

	assert.NoError(t, Sync())
}

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "shouting", Encoding: "json"})
	assert.Error(t, err)
}
