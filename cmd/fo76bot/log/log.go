package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "fo76bot-log-"
	keepFiles  = 3
)

var (
	logFileHandler *os.File
	mu             sync.Mutex
)

// NewLogger writes to stdout and to a new timestamped file in logDir. Only the
// newest log files are kept.
func NewLogger(debug bool, logDir string) (*slog.Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	if err := pruneLogs(logDir, keepFiles-1); err != nil {
		return nil, err
	}

	fileName := filepath.Join(logDir, filePrefix+time.Now().Format("2006-01-02-15-04-05")+".txt")
	lfh, err := os.Create(fileName)
	if err != nil {
		return nil, fmt.Errorf("error creating log file: %w", err)
	}

	mu.Lock()
	logFileHandler = lfh
	mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	}

	handler := slog.NewTextHandler(io.MultiWriter(lfh, os.Stdout), opts)

	return slog.New(handler), nil
}

// pruneLogs removes all but the newest keep log files.
func pruneLogs(logDir string, keep int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("error reading log directory: %w", err)
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) <= keep {
		return nil
	}

	// timestamped names sort chronologically
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-keep] {
		if err = os.Remove(filepath.Join(logDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing old log file: %w", err)
		}
	}

	return nil
}

func FlushLog() {
	mu.Lock()
	defer mu.Unlock()
	if logFileHandler != nil {
		logFileHandler.Sync()
	}
}

func FlushAndClose() {
	mu.Lock()
	defer mu.Unlock()
	if logFileHandler != nil {
		logFileHandler.Sync()
		logFileHandler.Close()
		logFileHandler = nil
	}
}
