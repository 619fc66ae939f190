// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package cmd_test

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"quarry/cmd"
	"quarry/common/helpers"
)

func TestVersion(t *testing.T) {
	root := cmd.RootCmd
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version"})
	err := root.Execute()
	if err != nil {
		t.Errorf("`version` error:\n%+v", err)
	}
	want := []string{
		"quarry dev",
		fmt.Sprintf("  Built with: %s", runtime.Version()),
	}
	got := strings.Split(buf.String(), "\n")
	if len(got) < len(want) {
		t.Fatalf("`version` output too short:\n%s", buf.String())
	}
	if diff := helpers.Diff(got[:len(want)], want); diff != "" {
		t.Errorf("`version` (-got, +want):\n%s", diff)
	}
}
