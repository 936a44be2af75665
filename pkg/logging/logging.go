// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvLogLevel is consulted when no explicit level is given.
	EnvLogLevel = "LOG_LEVEL"
)

// ParseLogLevel converts a level name to slog.Level. Unknown or empty values
// map to INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelFromEnv returns the level named by LOG_LEVEL, or INFO.
func levelFromEnv() slog.Level {
	return ParseLogLevel(os.Getenv(EnvLogLevel))
}

// resolveLevel prefers the explicit level and falls back to LOG_LEVEL.
func resolveLevel(level string) slog.Level {
	if strings.TrimSpace(level) == "" {
		return levelFromEnv()
	}
	return ParseLogLevel(level)
}

func handlerOptions(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	}
}

func newLogger(w io.Writer, module, version string, lvl slog.Level, asJSON bool) *slog.Logger {
	var h slog.Handler
	if asJSON {
		h = slog.NewJSONHandler(w, handlerOptions(lvl))
	} else {
		h = slog.NewTextHandler(w, handlerOptions(lvl))
	}
	return slog.New(h).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// NewStructuredLogger returns a JSON logger writing to stderr with module and
// version attributes attached to every record.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, resolveLevel(level), true)
}

// NewTextLogger returns a human readable logger writing to stderr.
func NewTextLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, resolveLevel(level), false)
}

// SetDefaultStructuredLoggerWithLevel installs a JSON logger as the slog
// default with an explicit level.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// SetDefaultTextLoggerWithLevel installs a text logger as the slog default.
// Used for interactive terminals where JSON is hard to read.
func SetDefaultTextLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewTextLogger(module, version, level))
}
