package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"quiet", LevelQuiet},
	}
	for _, tt := range tests {
		got, err := LookupLogLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want, ParseLogLevel(tt.in))
	}

	_, err := LookupLogLevel("loud")
	assert.ErrorContains(t, err, "loud")
	assert.Equal(t, LevelInfo, ParseLogLevel("loud"))
}

func TestLogLevel_Allows(t *testing.T) {
	assert.True(t, LevelInfo.Allows(LevelWarn))
	assert.True(t, LevelInfo.Allows(LevelInfo))
	assert.False(t, LevelInfo.Allows(LevelDebug))
	assert.False(t, LevelQuiet.Allows(LevelError))
	assert.False(t, LevelDebug.Allows(LevelQuiet))
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "quiet", LevelQuiet.String())
	assert.Equal(t, "unknown", LogLevel(42).String())
}
