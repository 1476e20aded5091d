package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(true) returned nil logger")
		}
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger == nil {
			t.Fatal("NewLogger(false) returned nil logger")
		}
		_ = logger.Sync()
	})
}

func TestNewFileLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nextstep.log")
	logger, err := NewFileLogger(false, FileLogOptions{Path: path})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Info("catalog ready")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "catalog ready") {
		t.Errorf("log file missing record: %s", data)
	}
}

func TestNewFileLogger_EmptyPath(t *testing.T) {
	logger, err := NewFileLogger(true, FileLogOptions{})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	if logger == nil {
		t.Fatal("nil logger")
	}
}
