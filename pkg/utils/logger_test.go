package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{"debug logs at debug level", true, true},
		{"production logs from info", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.debug)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zap.DebugLevel))
			assert.True(t, logger.Core().Enabled(zap.InfoLevel))
		})
	}
}
