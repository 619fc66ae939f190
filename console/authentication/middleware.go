// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package authentication

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// UserInformation contains information about the current user. The numeric
// identifiers feed the special variables of raw source queries.
type UserInformation struct {
	Login       string   `json:"login" header:"LOGIN" binding:"required"`
	Name        string   `json:"name,omitempty" header:"NAME"`
	Email       string   `json:"email,omitempty" header:"EMAIL" binding:"omitempty,email"`
	Timezone    string   `json:"timezone,omitempty" header:"TIMEZONE" binding:"omitempty,timezone"`
	UserID      uint64   `json:"user-id,omitempty" header:"USERID"`
	CompanyID   uint64   `json:"company-id,omitempty" header:"COMPANYID"`
	CompanyIDs  []uint64 `json:"company-ids,omitempty" header:"COMPANYIDS"`
	CompanyName string   `json:"company-name,omitempty" header:"COMPANYNAME"`
	LogoutURL   string   `json:"logout-url,omitempty" header:"LOGOUT" binding:"omitempty,uri"`
}

// UserAuthentication is a middleware to fill information about the
// current user. It does not really perform authentication but relies
// on HTTP headers.
func (c *Component) UserAuthentication() gin.HandlerFunc {
	return func(gc *gin.Context) {
		var info UserInformation
		if err := gc.ShouldBindWith(&info, customHeaderBinding{c}); err != nil {
			if c.config.DefaultUser.Login == "" {
				gc.JSON(http.StatusUnauthorized, gin.H{"message": "No user logged in."})
				gc.Abort()
				return
			}
			info = c.config.DefaultUser
		}
		gc.Set("user", info)
		gc.Next()
	}
}

type customHeaderBinding struct {
	c *Component
}

func (customHeaderBinding) Name() string {
	return "header"
}

// Bind will bind struct fields to HTTP headers using the configured mapping.
func (b customHeaderBinding) Bind(req *http.Request, obj interface{}) error {
	value := reflect.ValueOf(obj).Elem()
	tValue := reflect.TypeOf(obj).Elem()
	if value.Kind() != reflect.Struct {
		panic("should be a struct")
	}
	for i := 0; i < tValue.NumField(); i++ {
		sf := tValue.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous { // unexported
			continue
		}
		tag := sf.Tag.Get("header")
		if tag == "" || tag == "-" {
			continue
		}
		var header string
		switch tag {
		case "LOGIN":
			header = b.c.config.Headers.Login
		case "NAME":
			header = b.c.config.Headers.Name
		case "EMAIL":
			header = b.c.config.Headers.Email
		case "TIMEZONE":
			header = b.c.config.Headers.Timezone
		case "USERID":
			header = b.c.config.Headers.UserID
		case "COMPANYID":
			header = b.c.config.Headers.CompanyID
		case "COMPANYIDS":
			header = b.c.config.Headers.CompanyIDs
		case "COMPANYNAME":
			header = b.c.config.Headers.CompanyName
		case "LOGOUT":
			header = b.c.config.Headers.LogoutURL
		}
		if header == "" {
			continue
		}
		raw := req.Header.Get(header)
		if raw == "" {
			continue
		}
		field := value.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Uint64:
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("header %s is not a numeric identifier: %w", header, err)
			}
			field.SetUint(id)
		case reflect.Slice:
			ids := []uint64{}
			for _, part := range strings.Split(raw, ",") {
				id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
				if err != nil {
					return fmt.Errorf("header %s is not a list of numeric identifiers: %w",
						header, err)
				}
				ids = append(ids, id)
			}
			field.Set(reflect.ValueOf(ids))
		}
	}

	return binding.Validator.ValidateStruct(obj)
}
