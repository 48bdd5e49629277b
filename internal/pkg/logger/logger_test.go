package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(DEBUG)
	SetRedactPII(true)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
	})
	return &buf
}

func TestLogRedactsPII(t *testing.T) {
	buf := capture(t)

	Info("dispatch failed",
		"recipient_email", "john.doe@example.com",
		"ip", "203.0.113.7",
		"error", "550 mailbox bob@example.org unavailable",
		"ip_truncated", "203.0.113.0/24",
	)

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "jo***@example.com", entry["recipient_email"])
	assert.Equal(t, "[redacted]", entry["ip"])
	assert.Equal(t, "550 mailbox bo***@example.org unavailable", entry["error"])
	assert.Equal(t, "203.0.113.0/24", entry["ip_truncated"])
}

func TestLevelFilter(t *testing.T) {
	buf := capture(t)
	SetLevel(WARN)

	Info("dropped")
	Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
