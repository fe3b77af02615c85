package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger, err := NewLogger(LoggerConfig{
		Level:      "warn",
		OutputPath: path,
		Format:     "json",
		Service:    "travel-planner",
	})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "travel-planner", entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("traveler@example.com"))
	assert.True(t, IsValidEmail("a.b+tag@mail.example.cn"))
	assert.False(t, IsValidEmail("traveler@"))
	assert.False(t, IsValidEmail(""))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "打车花了50元", SanitizeText("  打车\x00花了50元\x1f \n"))
	assert.Equal(t, "第一行\n第二行", SanitizeText("第一行\n第二行"))

	long := strings.Repeat("好", MaxUtteranceLength+10)
	assert.Equal(t, MaxUtteranceLength, len([]rune(SanitizeText(long))))
}
