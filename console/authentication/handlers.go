// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package authentication

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserInfoHandlerFunc returns the information about the currently logged user.
func (c *Component) UserInfoHandlerFunc(gc *gin.Context) {
	info := gc.MustGet("user").(UserInformation)
	gc.JSON(http.StatusOK, info)
}
