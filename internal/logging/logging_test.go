package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink("info", "json", zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("token dropped", zap.String("token", "html_block"))
	require.NoError(t, l.Sync())

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Equal(t, "warn", gjson.Get(line, "level").String())
	assert.Equal(t, "html_block", gjson.Get(line, "token").String())
	assert.True(t, gjson.Get(line, "caller").Exists())
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink("debug", "console", zapcore.AddSync(&buf))
	require.NoError(t, err)
	l.Debug("visible")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "visible")
}

func TestInvalidSettings(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)
	_, err = New("info", "xml")
	assert.Error(t, err)
}
