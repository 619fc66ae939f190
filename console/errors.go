// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMetricConfigured is reported when an analysis has nothing to
	// aggregate. It is recoverable: the result is empty.
	ErrNoMetricConfigured = errors.New("no metric configured")
	// ErrNoQueryableSource is reported when no backend can serve the
	// analysis table.
	ErrNoQueryableSource = errors.New("no queryable source")
)

// CompilationError reports an analysis that cannot be turned into a query.
type CompilationError struct {
	Err error
}

// Error returns the error message.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("cannot compile analysis: %s", e.Err.Error())
}

// Unwrap returns the wrapped error.
func (e *CompilationError) Unwrap() error {
	return e.Err
}

// BackendExecutionError reports a failure from the backend executing a
// compiled query.
type BackendExecutionError struct {
	Backend string
	Err     error
}

// Error returns the error message, cleaned of driver noise.
func (e *BackendExecutionError) Error() string {
	return fmt.Sprintf("%s backend: %s", e.Backend, cleanErrorMessage(e.Err))
}

// Unwrap returns the wrapped error.
func (e *BackendExecutionError) Unwrap() error {
	return e.Err
}

// cleanErrorMessage keeps the first line of a driver error and strips the
// usual severity prefixes.
func cleanErrorMessage(err error) string {
	message := err.Error()
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx]
	}
	for _, prefix := range []string{"ERROR:", "Error:", "error:"} {
		message = strings.TrimSpace(strings.TrimPrefix(message, prefix))
	}
	return message
}
