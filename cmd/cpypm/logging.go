package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// verbosityLevel maps the number of -v flags to a log level.
func verbosityLevel(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2: //nolint:mnd
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// newLogger returns a human readable logger writing to w. If logFile is set,
// JSON log lines are additionally appended to that file.
func newLogger(fs afero.Fs, w io.Writer, verbosity int, logFile string) (zerolog.Logger, func() error, error) {
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(w),
	}

	writers := []io.Writer{console}
	closer := func() error { return nil }

	if logFile != "" {
		if err := fs.MkdirAll(filepath.Dir(logFile), baseFolderPerms); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := fs.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, baseFilePerms)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(verbosityLevel(verbosity)).
		With().Timestamp().Logger()

	if verbosity >= 2 { //nolint:mnd
		logger = logger.With().Caller().Logger()
	}

	return logger, closer, nil
}
