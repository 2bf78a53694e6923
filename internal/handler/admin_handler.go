package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhrubajit-says/FormForge/internal/model"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
	"github.com/Dhrubajit-says/FormForge/internal/validator"
)

// AdminHandler handles user management and template overrides.
// Routes are mounted behind RequireAdmin.
type AdminHandler struct {
	userService     *service.UserService
	templateService *service.TemplateService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *service.UserService, templateService *service.TemplateService) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		templateService: templateService,
	}
}

// ListUsers godoc
// GET /api/v1/admin/users
// Lists every user with the summaries of the templates they own.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListWithTemplates(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"users": users})
}

// DeleteUser godoc
// DELETE /api/v1/admin/users/:id
// Deletes a user's templates, then the user. Not atomic.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), a, id); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ToggleBlock godoc
// PUT /api/v1/admin/users/:id/block
// Blocks or unblocks a non-admin user.
func (h *AdminHandler) ToggleBlock(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleBlock(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ToggleRole godoc
// PUT /api/v1/admin/users/:id/role
// Switches a user between USER and ADMIN.
func (h *AdminHandler) ToggleRole(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleRole(c.Request.Context(), a, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UserTemplates godoc
// GET /api/v1/admin/users/:id/templates
func (h *AdminHandler) UserTemplates(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	list, err := h.userService.ListTemplates(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"templates": list})
}

// GetTemplate godoc
// GET /api/v1/admin/templates/:id
func (h *AdminHandler) GetTemplate(c *gin.Context) {
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

// UpdateTemplate godoc
// PUT /api/v1/admin/templates/:id
// Replaces any template's content. Ownership is kept.
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
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

// DeleteTemplate godoc
// DELETE /api/v1/admin/templates/:id
func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
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
