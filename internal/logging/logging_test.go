package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/internal/logging"
)

func TestParseLevel(t *testing.T) {
	type testCase struct {
		input  string
		want   slog.Level
		wantOK bool
	}

	tests := []testCase{
		{input: "debug", want: slog.LevelDebug, wantOK: true},
		{input: "INFO", want: slog.LevelInfo, wantOK: true},
		{input: "", want: slog.LevelInfo, wantOK: true},
		{input: "warning", want: slog.LevelWarn, wantOK: true},
		{input: "error", want: slog.LevelError, wantOK: true},
		{input: "loud", want: slog.LevelInfo, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := logging.ParseLevel(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer

	logger := logging.Setup(&buf, "warn", "json")
	logger.Info("hidden")
	slog.Warn("could not extract document", "file", "a.xml")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "could not extract document", entry["msg"])
	assert.Equal(t, "a.xml", entry["file"])
	assert.NotContains(t, buf.String(), "hidden")
}
