// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package helpers

import (
	"net"

	"github.com/go-playground/validator/v10"
)

// Validate is a validator instance with custom validators registered.
var Validate *validator.Validate

func isListen(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	_, port, err := net.SplitHostPort(val)
	if err != nil {
		return false
	}
	if port == "" {
		return false
	}
	return true
}

func init() {
	Validate = validator.New()
	Validate.RegisterValidation("listen", isListen)
}
