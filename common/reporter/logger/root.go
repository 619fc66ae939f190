// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package logger handles logging for quarry.
//
// This is a thin wrapper around zerolog. It brings the convention of
// a "module" field in each event, derived from the caller package, so
// logs can be filtered per component.
package logger

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// moduleName is the prefix of our own packages in call stacks.
const moduleName = "quarry/"

// Logger is a logger instance. It is compatible with the interface
// from zerolog by design.
type Logger struct {
	zerolog.Logger
}

// Configuration defines the configuration of the logger.
type Configuration struct{}

// DefaultConfiguration is the default logger configuration.
func DefaultConfiguration() Configuration {
	return Configuration{}
}

// New creates a new logger.
func New(config Configuration) (Logger, error) {
	logger := log.Logger.Hook(contextHook{})
	return Logger{logger}, nil
}

type contextHook struct{}

// Run adds more context to an event: "caller" and "module".
func (h contextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc := make([]uintptr, 20)
	n := runtime.Callers(4, pc)
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if idx := strings.Index(fn, moduleName); idx >= 0 {
			module := strings.SplitN(fn[idx:], ".", 2)[0]
			e.Str("module", module)
			if file := frame.File; file != "" {
				short := file
				if idx := strings.LastIndex(file, "/"); idx >= 0 {
					short = file[idx+1:]
				}
				e.Str("caller", short)
			}
			return
		}
		if !more {
			return
		}
	}
}
