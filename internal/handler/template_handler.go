package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	"github.com/Dhrubajit-says/FormForge/internal/validator"
)

// TemplateHandler handles template authoring endpoints.
type TemplateHandler struct {
	templateService *service.TemplateService
	scriptService   *service.AnswerScriptService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *service.TemplateService, scriptService *service.AnswerScriptService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		scriptService:   scriptService,
	}
}

// List godoc
// GET /api/v1/templates
// Lists the caller's templates.
func (h *TemplateHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	list, err := h.templateService.List(c.Request.Context(), a)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"templates": list})
}

// Search godoc
// GET /api/v1/templates/search?q=
// Case-insensitive title search over the caller's templates.
func (h *TemplateHandler) Search(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	list, err := h.templateService.Search(c.Request.Context(), a, c.Query("q"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"templates": list})
}

// Create godoc
// POST /api/v1/templates
// Creates a template owned by the caller.
func (h *TemplateHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req model.TemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	t, err := h.templateService.Create(c.Request.Context(), a, req.ToTemplate())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"template": t})
}

// Get godoc
// GET /api/v1/templates/:id
// Returns a template with its answer key.
func (h *TemplateHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	t, err := h.templateService.Get(c.Request.Context(), a, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"template": t})
}

// Update godoc
// PUT /api/v1/templates/:id
// Replaces a template's content. Submitted scripts keep their snapshot.
func (h *TemplateHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.TemplateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	t, err := h.templateService.Update(c.Request.Context(), a, id, req.ToTemplate())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"template": t})
}

// Delete godoc
// DELETE /api/v1/templates/:id
// Deletes a template. Its answer scripts remain readable.
func (h *TemplateHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), a, id); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Stats godoc
// GET /api/v1/templates/:id/stats
// Response statistics over non-preview scripts.
func (h *TemplateHandler) Stats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.scriptService.TemplateStats(c.Request.Context(), a, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Preview godoc
// POST /api/v1/templates/:id/preview
// Submits an owner's trial run, stored with is_preview set.
func (h *TemplateHandler) Preview(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindFailed(c, fields)
		return
	}

	script, err := h.scriptService.SubmitPreview(c.Request.Context(), a, id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"answer_script": script})
}
