package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"storefront/config"
	"storefront/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNopBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() {
		Debug("debug")
		Info("info")
		Warn("warn")
		Error("error")
		With(zap.String("k", "v")).Info("with")
		Named("outbox.dispatcher").Info("named")
		Ctx(context.Background()).Info("ctx")
	})
	assert.NoError(t, Sync())
}

func TestJSONEncoderForProduction(t *testing.T) {
	var buf bytes.Buffer
	l := New(&config.LogConfig{Level: "info"}, "production", &buf, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	l.Named("outbox.dispatcher").Info("Outbox message delivered", zap.String("message_id", "m-1"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "Outbox message delivered", entry["msg"])
	assert.Equal(t, "outbox.dispatcher", entry["component"])
	assert.Equal(t, "m-1", entry["message_id"])
	assert.Regexp(t, `Z$`, entry["time"])
}

func TestConsoleEncoderForDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := New(&config.LogConfig{}, "development", &buf, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	l.Info("Order placed")

	assert.Contains(t, buf.String(), "Order placed")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	l := New(&config.LogConfig{Format: "json"}, "development", &buf, zap.NewAtomicLevelAt(zapcore.InfoLevel))

	l.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestCtxAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Set(New(&config.LogConfig{Format: "json"}, "test", &buf, zap.NewAtomicLevelAt(zapcore.InfoLevel)))
	t.Cleanup(func() { Set(nil) })

	ctx := persistence.ContextWithRequestID(context.Background(), "req-42")
	Ctx(ctx).Info("Unit of work committed")

	assert.Equal(t, "req-42", decodeLine(t, &buf)["request_id"])
}

func TestUpdateLevel(t *testing.T) {
	require.NoError(t, Init(&config.LogConfig{Level: "info", Output: "stdout"}, "test"))
	t.Cleanup(func() { Set(nil) })

	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
	UpdateLevel("debug")
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
	UpdateLevel("error")
	assert.False(t, Get().Core().Enabled(zapcore.WarnLevel))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "worker.log")
	require.NoError(t, Init(&config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	}, "production"))
	t.Cleanup(func() { Set(nil) })

	Info("Outbox worker started", zap.Int("batch_size", 100))
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Outbox worker started"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}
