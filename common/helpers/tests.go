// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

// Package helpers contains small functions and helpers used in many
// places, including for tests.
package helpers

import (
	"fmt"
	"net"
	"path/filepath"
	"runtime"
	"testing"
)

// Pos is a file:line recording a test data position.
type Pos struct {
	file string
	line int
}

// Mark returns the position of its caller.
func Mark() Pos {
	_, file, line, _ := runtime.Caller(1)
	return Pos{filepath.Base(file), line}
}

// String returns a textual representation of a Pos.
func (p Pos) String() string {
	if p.file == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d: ", p.file, p.line)
}

type starter interface {
	Start() error
}
type stopper interface {
	Stop() error
}

// StartStop starts a component and registers its stop on test cleanup.
func StartStop(t *testing.T, component interface{}) {
	t.Helper()
	if starterC, ok := component.(starter); ok {
		if err := starterC.Start(); err != nil {
			t.Fatalf("Start() error:\n%+v", err)
		}
	}
	t.Cleanup(func() {
		if stopperC, ok := component.(stopper); ok {
			if err := stopperC.Stop(); err != nil {
				t.Errorf("Stop() error:\n%+v", err)
			}
		}
	})
}

// CheckExternalService checks an external service, available either
// on the provided port on localhost or through a DNS name. Depending
// on the environment, the appropriate connection string is returned.
// If no connection is possible, the test is skipped, unless we are
// running in CI.
func CheckExternalService(t *testing.T, name string, dnsCandidates []string, port string) string {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skip test with %s in short mode", name)
	}
	found := ""
	for _, dnsCandidate := range dnsCandidates {
		resolv, err := net.LookupHost(dnsCandidate)
		if err == nil && len(resolv) > 0 {
			found = dnsCandidate
			break
		}
	}
	if found == "" {
		t.Skipf("%s is not available", name)
	}
	server := net.JoinHostPort(found, port)
	conn, err := net.Dial("tcp", server)
	if err != nil {
		t.Skipf("%s is not reachable on %s", name, server)
	}
	conn.Close()
	return server
}
