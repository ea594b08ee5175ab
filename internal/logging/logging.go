// Package logging routes the standard logger to a file under the data
// directory. The terminal belongs to the TUI, so nothing is logged to it.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Setup rotates logFile if it has grown past maxSizeMB, then points the
// standard logger at it. The returned closer restores stderr output.
func Setup(logFile string, maxSizeMB int) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if _, err := RotateIfNeeded(logFile, maxSizeMB); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return closerFunc(func() error {
		log.SetOutput(os.Stderr)
		return f.Close()
	}), nil
}

// Discard silences the standard logger, for commands that print to stdout.
func Discard() {
	log.SetOutput(io.Discard)
}

// RotateIfNeeded renames logFile to logFile.old once it exceeds maxSizeMB.
// A non-positive limit disables rotation.
func RotateIfNeeded(logFile string, maxSizeMB int) (bool, error) {
	if maxSizeMB <= 0 {
		return false, nil
	}

	info, err := os.Stat(logFile)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat log file: %w", err)
	}

	if info.Size() <= int64(maxSizeMB)*1024*1024 {
		return false, nil
	}

	oldLogFile := logFile + ".old"
	if _, err := os.Stat(oldLogFile); err == nil {
		if err := os.Remove(oldLogFile); err != nil {
			return false, fmt.Errorf("remove old backup: %w", err)
		}
	}

	if err := os.Rename(logFile, oldLogFile); err != nil {
		return false, fmt.Errorf("rename log file: %w", err)
	}
	return true, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
