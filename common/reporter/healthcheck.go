// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package reporter

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthcheckStatus represents an healthcheck status.
type HealthcheckStatus int

const (
	// HealthcheckOK says "OK"
	HealthcheckOK HealthcheckStatus = iota
	// HealthcheckWarning says there is a non-fatal condition
	HealthcheckWarning
	// HealthcheckError says there is a big problem with the component
	HealthcheckError
)

func (hs HealthcheckStatus) String() string {
	switch hs {
	case HealthcheckOK:
		return "ok"
	case HealthcheckWarning:
		return "warning"
	case HealthcheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText turns a status into text.
func (hs HealthcheckStatus) MarshalText() ([]byte, error) {
	return []byte(hs.String()), nil
}

// HealthcheckResult combines a status and a reason.
type HealthcheckResult struct {
	Status HealthcheckStatus `json:"status"`
	Reason string            `json:"reason"`
}

// MultipleHealthcheckResults aggregates the result of several healthchecks.
type MultipleHealthcheckResults struct {
	Status  HealthcheckStatus            `json:"status"`
	Details map[string]HealthcheckResult `json:"details,omitempty"`
}

// HealthcheckFunc defines a function returning an healthcheck result.
type HealthcheckFunc func(context.Context) HealthcheckResult

// RegisterHealthcheck registers a new healthcheck.
func (r *Reporter) RegisterHealthcheck(name string, hf HealthcheckFunc) {
	r.healthchecksLock.Lock()
	r.healthchecks[name] = hf
	r.healthchecksLock.Unlock()
}

// RunHealthchecks executes all healthchecks and returns a global
// status as well as a map from service names to returned results.
func (r *Reporter) RunHealthchecks(ctx context.Context) MultipleHealthcheckResults {
	results := MultipleHealthcheckResults{
		Status:  HealthcheckOK,
		Details: map[string]HealthcheckResult{},
	}
	r.healthchecksLock.Lock()
	defer r.healthchecksLock.Unlock()
	for name, hf := range r.healthchecks {
		result := hf(ctx)
		results.Details[name] = result
		if result.Status > results.Status {
			results.Status = result.Status
		}
	}
	return results
}

// ChannelHealthcheckFunc is a healthcheck callback sent over a channel.
type ChannelHealthcheckFunc func(HealthcheckStatus, string)

// ChannelHealthcheck builds an healthcheck function that delegates
// the result to a channel. The component owning the channel should
// invoke the received callback with its status.
func ChannelHealthcheck(ctx context.Context, contact chan<- ChannelHealthcheckFunc) HealthcheckFunc {
	return func(checkCtx context.Context) HealthcheckResult {
		answerChan := make(chan HealthcheckResult)
		defer close(answerChan)
		cb := func(status HealthcheckStatus, reason string) {
			select {
			case <-checkCtx.Done():
			case answerChan <- HealthcheckResult{status, reason}:
			}
		}
		select {
		case <-ctx.Done():
			return HealthcheckResult{HealthcheckError, "component stopped"}
		case <-checkCtx.Done():
			return HealthcheckResult{HealthcheckWarning, "timeout during check"}
		case contact <- cb:
			select {
			case <-checkCtx.Done():
				return HealthcheckResult{HealthcheckWarning, "timeout during answer"}
			case result := <-answerChan:
				return result
			}
		}
	}
}

// HealthcheckHTTPHandler returns an HTTP handler to execute the
// healthchecks and return the aggregated result.
func (r *Reporter) HealthcheckHTTPHandler(gc *gin.Context) {
	results := r.RunHealthchecks(gc.Request.Context())
	code := http.StatusOK
	if results.Status == HealthcheckError {
		code = http.StatusServiceUnavailable
	}
	gc.IndentedJSON(code, results)
}
