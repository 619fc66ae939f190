// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package sqldb

import (
	"context"
	"time"

	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"quarry/common/reporter"
)

// Logger adapts a reporter to the gorm logging interface.
type Logger struct {
	r *reporter.Reporter
}

// NewLogger creates a gorm logger on top of a reporter.
func NewLogger(r *reporter.Reporter) *Logger {
	return &Logger{r}
}

// LogMode changes the log level. It is a no-op, the reporter owns the level.
func (l *Logger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

// Info logs at the info level.
func (l *Logger) Info(_ context.Context, s string, args ...interface{}) {
	l.r.Info().Msgf(s, args...)
}

// Warn logs at the warn level.
func (l *Logger) Warn(_ context.Context, s string, args ...interface{}) {
	l.r.Warn().Msgf(s, args...)
}

// Error logs at the error level.
func (l *Logger) Error(_ context.Context, s string, args ...interface{}) {
	l.r.Error().Msgf(s, args...)
}

// Trace logs a query with its duration.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, _ := fc()
	fields := map[string]interface{}{
		"sql":      sql,
		"duration": elapsed,
		"source":   utils.FileWithLineNum(),
	}
	if err != nil {
		l.r.Error().Err(err).Fields(fields).Msg("SQL query error")
		return
	}

	l.r.Debug().Fields(fields).Msg("SQL query")
}
