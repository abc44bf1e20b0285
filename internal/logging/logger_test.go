package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		for _, format := range []string{"json", "console"} {
			logger, err := NewLogger(tt.level, format, "floorplan")
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want), "%s/%s", tt.level, format)
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1), "%s/%s", tt.level, format)
			}
		}
	}
}
