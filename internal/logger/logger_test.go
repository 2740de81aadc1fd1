package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(true, true)
	require.NoError(t, err)
	assert.NotNil(t, log)

	log, err = New(false, false)
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "hello", TruncateForLog("hello", 10))
	assert.Equal(t, "hel...", TruncateForLog("hello world", 3))
	assert.Equal(t, "", TruncateForLog("hello", 0))
	assert.Equal(t, "hello", TruncateForLog("  hello  ", 10))
}
