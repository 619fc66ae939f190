// SPDX-FileCopyrightText: 2025 The Quarry Authors
// SPDX-License-Identifier: AGPL-3.0-only

package console

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quarry/common/helpers"
	"quarry/common/schema"
	"quarry/console/authentication"
	"quarry/console/database"
	"quarry/console/query"
)

func (c *Component) configHandlerFunc(gc *gin.Context) {
	gc.JSON(http.StatusOK, gin.H{
		"version": c.config.Version,
		"tables":  c.d.Schema.Tables(),
		"locales": c.d.Schema.Locales(),
	})
}

// analysisDataHandlerInput describes the input for the /analysis/data
// endpoint: a saved analysis reference or an inline definition, plus the
// request-scoped inputs.
type analysisDataHandlerInput struct {
	ID       uint64          `json:"id,omitempty"`
	Analysis *query.Analysis `json:"analysis,omitempty"`
	AnalysisRequest
}

// analysis resolves the requested analysis, inline or saved.
func (c *Component) analysis(gc *gin.Context, input analysisDataHandlerInput) (query.Analysis, bool) {
	if input.Analysis != nil {
		return *input.Analysis, true
	}
	if input.ID == 0 {
		gc.JSON(http.StatusBadRequest, gin.H{"message": "No analysis provided."})
		return query.Analysis{}, false
	}
	user := gc.MustGet("user").(authentication.UserInformation)
	saved, err := c.d.Database.GetSavedAnalysis(gc.Request.Context(), user.Login, input.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			gc.JSON(http.StatusNotFound, gin.H{"message": "Analysis not found."})
		} else {
			c.r.Err(err).Msg("unable to retrieve saved analysis")
			gc.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to retrieve analysis."})
		}
		return query.Analysis{}, false
	}
	var analysis query.Analysis
	if err := json.Unmarshal([]byte(saved.Definition), &analysis); err != nil {
		gc.JSON(http.StatusInternalServerError, gin.H{"message": "Stored analysis is unreadable."})
		return query.Analysis{}, false
	}
	return analysis, true
}

func (c *Component) analysisDataHandlerFunc(gc *gin.Context) {
	var input analysisDataHandlerInput
	if err := gc.ShouldBindJSON(&input); err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
		return
	}
	analysis, ok := c.analysis(gc, input)
	if !ok {
		return
	}
	input.Context = requestContextFromUser(gc.MustGet("user").(authentication.UserInformation))

	ctx := c.t.Context(gc.Request.Context())
	result, err := c.GetAnalysisData(ctx, analysis, input.AnalysisRequest)
	if err != nil {
		c.writeError(gc, err)
		return
	}
	gc.JSON(http.StatusOK, result)
}

func (c *Component) analysisPreviewHandlerFunc(gc *gin.Context) {
	var input analysisDataHandlerInput
	if err := gc.ShouldBindJSON(&input); err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
		return
	}
	analysis, ok := c.analysis(gc, input)
	if !ok {
		return
	}
	input.Context = requestContextFromUser(gc.MustGet("user").(authentication.UserInformation))

	preview, err := c.Preview(analysis, input.AnalysisRequest)
	if err != nil {
		c.writeError(gc, err)
		return
	}
	gc.JSON(http.StatusOK, gin.H{"query": preview})
}

// writeError maps an analysis error to an HTTP answer. Compilation issues
// are the caller's fault, backend failures are not.
func (c *Component) writeError(gc *gin.Context, err error) {
	var compilation *CompilationError
	var execution *BackendExecutionError
	switch {
	case errors.As(err, &execution):
		c.r.Err(err).Msg("backend error")
		gc.JSON(http.StatusBadGateway, gin.H{"message": helpers.Capitalize(execution.Error())})
	case errors.As(err, &compilation),
		errors.Is(err, schema.ErrUnknownTable),
		errors.Is(err, ErrNoQueryableSource),
		errors.Is(err, ErrNoMetricConfigured):
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
	default:
		c.r.Err(err).Msg("unable to run analysis")
		gc.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to run analysis."})
	}
}

func (c *Component) analysisSavedListHandlerFunc(gc *gin.Context) {
	user := gc.MustGet("user").(authentication.UserInformation)
	analyses, err := c.d.Database.ListSavedAnalyses(gc.Request.Context(), user.Login)
	if err != nil {
		c.r.Err(err).Msg("unable to list saved analyses")
		gc.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to list saved analyses."})
		return
	}
	gc.JSON(http.StatusOK, analyses)
}

func (c *Component) analysisSavedAddHandlerFunc(gc *gin.Context) {
	var saved database.SavedAnalysis
	if err := gc.ShouldBindJSON(&saved); err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
		return
	}
	if message, ok := c.checkDefinition(saved); !ok {
		gc.JSON(http.StatusBadRequest, gin.H{"message": message})
		return
	}
	user := gc.MustGet("user").(authentication.UserInformation)
	saved.User = user.Login
	if err := c.d.Database.CreateSavedAnalysis(gc.Request.Context(), saved); err != nil {
		c.r.Err(err).Msg("unable to save analysis")
		gc.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to save analysis."})
		return
	}
	gc.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (c *Component) analysisSavedUpdateHandlerFunc(gc *gin.Context) {
	id, err := strconv.ParseUint(gc.Param("id"), 10, 64)
	if err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": "Bad analysis identifier."})
		return
	}
	var saved database.SavedAnalysis
	if err := gc.ShouldBindJSON(&saved); err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
		return
	}
	user := gc.MustGet("user").(authentication.UserInformation)
	saved.ID = id
	saved.User = user.Login
	err = c.d.Database.UpdateSavedAnalysis(gc.Request.Context(), saved,
		func(updated database.SavedAnalysis) error {
			if message, ok := c.checkDefinition(updated); !ok {
				return errors.New(message)
			}
			return nil
		})
	switch {
	case errors.Is(err, database.ErrNotFound):
		gc.JSON(http.StatusNotFound, gin.H{"message": "Analysis not found."})
	case err != nil:
		gc.JSON(http.StatusBadRequest, gin.H{"message": helpers.Capitalize(err.Error())})
	default:
		gc.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}

func (c *Component) analysisSavedDeleteHandlerFunc(gc *gin.Context) {
	id, err := strconv.ParseUint(gc.Param("id"), 10, 64)
	if err != nil {
		gc.JSON(http.StatusBadRequest, gin.H{"message": "Bad analysis identifier."})
		return
	}
	user := gc.MustGet("user").(authentication.UserInformation)
	if err := c.d.Database.DeleteSavedAnalysis(gc.Request.Context(),
		database.SavedAnalysis{ID: id, User: user.Login}); err != nil {
		gc.JSON(http.StatusNotFound, gin.H{"message": "Analysis not found."})
		return
	}
	gc.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// checkDefinition validates a serialized analysis against the catalog.
func (c *Component) checkDefinition(saved database.SavedAnalysis) (string, bool) {
	var analysis query.Analysis
	if err := json.Unmarshal([]byte(saved.Definition), &analysis); err != nil {
		return "Definition is not valid JSON.", false
	}
	if analysis.Table != saved.Table {
		return "Definition table does not match.", false
	}
	if _, err := analysis.Validate(c.d.Schema); err != nil {
		return helpers.Capitalize(err.Error()), false
	}
	return "", true
}
