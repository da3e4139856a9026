package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logDir      = "logs"
	logFileName = "lockstep.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes the global logger to logs/lockstep.log when debug is set
// and discards everything otherwise; the terminal belongs to the HUD.
// A log file over maxLogSize is renamed with a timestamp before opening.
// Returns the open file (nil when disabled or on failure).
func setupLogging(debug bool) *os.File {
	if !debug {
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("lockstep-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate log file: %v\n", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	log.Logger = zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	log.Info().Str("path", logPath).Msg("logging started")
	return f
}
