package service

import (
	"github.com/google/uuid"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   model.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// CanManage reports whether the actor may modify a resource owned by ownerID.
// Admins override ownership.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.UserID == ownerID || a.IsAdmin()
}
