// Package logging builds the slog backend shared by every component: an
// optional rotated log file plus stdout, with per-subsystem levels parsed
// from a "level" or "subsys=level" debug string.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Backend fans log writes out to stdout and an optional rotating file and
// hands out per-subsystem loggers.
type Backend struct {
	stdOut     io.Writer
	logRotator *rotator.Rotator
	bknd       *slog.Backend

	mtx          sync.Mutex
	defaultLevel slog.Level
	levels       map[string]slog.Level
	loggers      map[string]slog.Logger
}

// NewBackend creates the backend. logFile may be empty to log to stdout
// only. debugLevel is a comma-separated list of "level" or "subsys=level"
// entries, for example "info" or "debug,DIRC=trace".
func NewBackend(logFile, debugLevel string, stdOut io.Writer) (*Backend, error) {
	var logRotator *rotator.Rotator
	if logFile != "" {
		logDir, _ := filepath.Split(logFile)
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %v", err)
		}
		var err error
		logRotator, err = rotator.New(logFile, 1024, false, 10)
		if err != nil {
			return nil, fmt.Errorf("create file rotator: %v", err)
		}
	}

	b := &Backend{
		stdOut:       stdOut,
		logRotator:   logRotator,
		defaultLevel: slog.LevelInfo,
		levels:       make(map[string]slog.Level),
		loggers:      make(map[string]slog.Logger),
	}
	b.bknd = slog.NewBackend(b)

	for _, v := range strings.Split(debugLevel, ",") {
		if v == "" {
			continue
		}
		fields := strings.Split(v, "=")
		switch len(fields) {
		case 1:
			level, ok := slog.LevelFromString(fields[0])
			if !ok {
				return nil, fmt.Errorf("unknown log level %q", fields[0])
			}
			b.defaultLevel = level
		case 2:
			level, ok := slog.LevelFromString(fields[1])
			if !ok {
				return nil, fmt.Errorf("unknown log level %q", fields[1])
			}
			b.levels[fields[0]] = level
		default:
			return nil, fmt.Errorf("unable to parse %q as subsys=level entry", v)
		}
	}

	return b, nil
}

// Write implements io.Writer for the slog backend.
func (b *Backend) Write(p []byte) (int, error) {
	if b.stdOut != nil {
		b.stdOut.Write(p)
	}
	if b.logRotator != nil {
		b.logRotator.Write(p)
	}
	return len(p), nil
}

// Logger returns the logger for subsys, creating it on first use.
func (b *Backend) Logger(subsys string) slog.Logger {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if l, ok := b.loggers[subsys]; ok {
		return l
	}
	l := b.bknd.Logger(subsys)
	if level, ok := b.levels[subsys]; ok {
		l.SetLevel(level)
	} else {
		l.SetLevel(b.defaultLevel)
	}
	b.loggers[subsys] = l
	return l
}

// Close flushes and closes the rotated log file, if any.
func (b *Backend) Close() error {
	if b.logRotator != nil {
		return b.logRotator.Close()
	}
	return nil
}
