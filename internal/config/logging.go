package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFilePrefix = "noteshelf-"
	logFileSuffix = ".log"
	// Lexical order of this layout is chronological order
	logFileLayout = "2006-01-02T15-04-05"
)

// LogWriter returns stdout, or stdout tee'd into a per-start log file under
// cfg.LogDir. Only the newest cfg.LogMaxFiles files are kept. The returned
// closer is never nil.
func LogWriter(cfg *Config) (io.Writer, io.Closer, error) {
	if cfg.LogDir == "" {
		return os.Stdout, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(cfg.LogDir, logFilePrefix+time.Now().Format(logFileLayout)+logFileSuffix)
	// Two starts within the same second share a file
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	if err := pruneLogs(cfg.LogDir, cfg.LogMaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log retention: %v\n", err)
	}

	return io.MultiWriter(os.Stdout, f), f, nil
}

// pruneLogs deletes all but the newest keep log files in dir. Other files
// are ignored. Every removal is attempted; failures are joined.
func pruneLogs(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	// ReadDir sorts by name
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), logFilePrefix) && strings.HasSuffix(e.Name(), logFileSuffix) {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) <= keep {
		return nil
	}

	var errs []error
	for _, name := range logs[:len(logs)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
