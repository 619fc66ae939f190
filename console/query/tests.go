// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !release

package query

import (
	"github.com/google/go-cmp/cmp/cmpopts"

	"quarry/common/helpers"
)

func init() {
	// The validation state is irrelevant when diffing analyses in tests.
	helpers.RegisterCmpOption(cmpopts.IgnoreUnexported(
		Metric{}, Dimension{}, Filter{}, DateFilter{}))
}
