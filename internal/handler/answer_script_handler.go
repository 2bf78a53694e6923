package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	"github.com/Dhrubajit-says/FormForge/internal/validator"
)

// AnswerScriptHandler handles review and grading of submissions.
type AnswerScriptHandler struct {
	scriptService *service.AnswerScriptService
}

// NewAnswerScriptHandler creates a new AnswerScriptHandler.
func NewAnswerScriptHandler(scriptService *service.AnswerScriptService) *AnswerScriptHandler {
	return &AnswerScriptHandler{scriptService: scriptService}
}

// List godoc
// GET /api/v1/answer-scripts?page=&per_page=
// Lists scripts submitted to the caller's templates, newest first.
func (h *AnswerScriptHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	items, total, err := h.scriptService.ListForOwner(c.Request.Context(), a, page, perPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"answer_scripts": items},
		response.NewPagination(page, perPage, total))
}

// Get godoc
// GET /api/v1/answer-scripts/:id
// Returns a full script with its question snapshot.
func (h *AnswerScriptHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	script, err := h.scriptService.Get(c.Request.Context(), a, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"answer_script": script,
		"grading_state": script.GradingState(),
	})
}

// Summary godoc
// GET /api/v1/answer-scripts/:id/summary
// Recomputes the score summary. Never writes.
func (h *AnswerScriptHandler) Summary(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.scriptService.GetScoreSummary(c.Request.Context(), a, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// UpdateManualScore godoc
// PUT /api/v1/answer-scripts/:id/manual-scores/:index
// Awards points to one free-text answer.
func (h *AnswerScriptHandler) UpdateManualScore(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"index": "index must be an integer"})
		return
	}

	var req model.ManualScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	summary, err := h.scriptService.UpdateManualScore(c.Request.Context(), a, id, index, *req.Points)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// UpdateManualScores godoc
// PUT /api/v1/answer-scripts/:id/manual-scores
// Awards points to several free-text answers at once. All or nothing.
func (h *AnswerScriptHandler) UpdateManualScores(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.BulkManualScoreRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	summary, err := h.scriptService.UpdateManualScores(c.Request.Context(), a, id, req.Scores)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// Delete godoc
// DELETE /api/v1/answer-scripts/:id
func (h *AnswerScriptHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.scriptService.Delete(c.Request.Context(), a, id); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
