package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitVerboseEnablesDebug(t *testing.T) {
	require.NoError(t, Init(true))
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))
}

func TestInitQuietSuppressesInfo(t *testing.T) {
	require.NoError(t, Init(false))
	assert.False(t, Logger().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger().Core().Enabled(zapcore.WarnLevel))
}

func TestWithModule(t *testing.T) {
	require.NoError(t, Init(false))
	assert.NotNil(t, WithModule("gate"))
}
