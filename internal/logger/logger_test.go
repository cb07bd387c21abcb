package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: the logger redirects the global log package.
func TestInit_WritesToDir(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Init(dir))
	defer Close()

	assert.Equal(t, filepath.Join(dir, "debug.log"), GetLogPath())

	SetDebug(false)
	LogDebug("hidden %d", 1)
	SetDebug(true)
	LogDebug("shown %d", 2)
	LogError("failure %s", "x")
	SetDebug(false)

	data, err := os.ReadFile(GetLogPath())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[INFO] Logger initialized")
	assert.Contains(t, content, "[DEBUG] shown 2")
	assert.Contains(t, content, "[ERROR] failure x")
	assert.NotContains(t, content, "hidden")
}
