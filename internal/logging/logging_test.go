package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateIfNeeded(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "pomo.log")

	rotated, err := RotateIfNeeded(logFile, 1)
	require.NoError(t, err)
	assert.False(t, rotated, "missing file needs no rotation")

	require.NoError(t, os.WriteFile(logFile, bytes.Repeat([]byte("x"), 1024*1024+1), 0o644))
	require.NoError(t, os.WriteFile(logFile+".old", []byte("stale"), 0o644))

	rotated, err = RotateIfNeeded(logFile, 1)
	require.NoError(t, err)
	assert.True(t, rotated)

	_, err = os.Stat(logFile)
	assert.True(t, os.IsNotExist(err))
	info, err := os.Stat(logFile + ".old")
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1024*1024))

	rotated, err = RotateIfNeeded(logFile+".old", 0)
	require.NoError(t, err)
	assert.False(t, rotated, "zero limit disables rotation")
}

func TestSetup(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "pomo.log")

	closer, err := Setup(logFile, 5)
	require.NoError(t, err)

	log.Printf("timer started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "timer started"))
}
