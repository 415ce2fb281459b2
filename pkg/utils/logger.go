package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger for debug messages. The TUI owns the terminal, so output only goes
// to a file and only in verbose mode.
var (
	isVerbose = false
	logFile   *os.File
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Log writes a message with key/value pairs when verbose mode is enabled.
func Log(msg string, kv ...any) {
	if isVerbose {
		logger.Info(msg, kv...)
	}
}

// LogError writes an error with key/value pairs when verbose mode is enabled.
func LogError(msg string, err error, kv ...any) {
	if isVerbose {
		logger.Error(msg, append([]any{"error", err}, kv...)...)
	}
}

// Logger returns the shared structured logger.
func Logger() *slog.Logger {
	return logger
}

// InitLogger initializes the logging system. An empty path uses a dated
// file under /tmp.
func InitLogger(verbose bool, path string) {
	isVerbose = verbose

	if verbose {
		if path == "" {
			path = fmt.Sprintf("/tmp/dayplan_%s.log", time.Now().Format("2006-01-02"))
		}

		var err error
		logFile, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			isVerbose = false
			return
		}
		logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

		Log("verbose logging enabled", "file", path)
	}
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	isVerbose = false
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}
