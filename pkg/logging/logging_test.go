package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, LevelFromString(in), "input %q", in)
	}
}

func TestFormatFromString(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromString(" JSON "))
	assert.Equal(t, FormatPlain, FormatFromString("plain"))
	assert.Equal(t, FormatText, FormatFromString(""))
	assert.Equal(t, FormatText, FormatFromString("logfmt"))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelWarn, FormatJSON)).With("service", "webprintd")

	logger.Info("upload started", "file", "essay.pdf")
	assert.Zero(t, buf.Len(), "records below the level are dropped")

	logger.Warn("print rejected", "file", "essay.pdf")
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "print rejected", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "webprintd", record["service"])
	assert.Equal(t, "essay.pdf", record["file"])
}

func TestNewHandler_Plain(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, slog.LevelInfo, FormatPlain)).Info("signed in", "email", "jdoe@students.calvin.edu")

	out := buf.String()
	assert.Contains(t, out, "signed in")
	assert.Contains(t, out, "email=jdoe@students.calvin.edu")
	assert.NotContains(t, out, "\x1b[", "plain output has no color codes")
}
