package logging

import (
	"testing"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	logger, err := New(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = New(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewConsole_QuietByDefault(t *testing.T) {
	logger, err := NewConsole(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestSugaredLoggerSatisfiesEngineLogger(t *testing.T) {
	logger, err := New(false)
	require.NoError(t, err)

	var l calculation.Logger = logger.Sugar()
	assert.NotNil(t, l)
	Sync(nil)
}
