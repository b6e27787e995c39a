package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zap.WarnLevel, ParseLevel(""))
	assert.Equal(t, zap.ErrorLevel, ParseLevel("error"))
}

func TestSetLevel(t *testing.T) {
	SetLevel("debug")
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))

	SetLevel("")
	assert.True(t, Logger.Core().Enabled(zap.DebugLevel))

	SetLevel("error")
	assert.False(t, Logger.Core().Enabled(zap.InfoLevel))
}
