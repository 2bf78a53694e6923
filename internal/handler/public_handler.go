package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	"github.com/Dhrubajit-says/FormForge/internal/validator"
)

// PublicHandler serves respondents. None of its routes require a token;
// the template or script UUID is the only credential.
type PublicHandler struct {
	templateService *service.TemplateService
	scriptService   *service.AnswerScriptService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(templateService *service.TemplateService, scriptService *service.AnswerScriptService) *PublicHandler {
	return &PublicHandler{
		templateService: templateService,
		scriptService:   scriptService,
	}
}

// GetTemplate godoc
// GET /api/v1/public/templates/:id
// Returns the respondent view of a template, without correct answers.
func (h *PublicHandler) GetTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.templateService.GetShared(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"template": view})
}

// StartAttempt godoc
// POST /api/v1/public/templates/:id/start
// Starts the clock on a timed TEST template.
func (h *PublicHandler) StartAttempt(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.templateService.StartAttempt(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// Submit godoc
// POST /api/v1/public/templates/:id/answer-scripts
// Records a respondent's answers. Auto-gradable questions are scored
// immediately; free-text answers wait for the owner.
func (h *PublicHandler) Submit(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	script, err := h.scriptService.Submit(c.Request.Context(), id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"answer_script_id": script.ID,
		"auto_score":       script.AutoScore,
		"summary":          script.Summary,
		"grading_state":    script.GradingState(),
	})
}

// GetResult godoc
// GET /api/v1/public/answer-scripts/:id/result
// Returns the respondent-facing result of a submission.
func (h *PublicHandler) GetResult(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.scriptService.GetResult(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
