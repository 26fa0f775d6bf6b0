// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/minewatch/pkg/config"
)

// defaultTUILogFile keeps log output off the alt screen
const defaultTUILogFile = "minewatch.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the process logger from settings. In TUI mode output goes
// to a file so the terminal UI is not corrupted.
func newLogger(s *config.Settings, tui bool) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	toFile := false

	path := s.LogFile
	if path == "" && tui {
		path = defaultTUILogFile
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		out = f
		closer = f
		toFile = true
	}

	if s.LogFormat == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    toFile,
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}
