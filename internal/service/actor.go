package service

import (
	"go-restaurant-authz/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated administrator performing an operation.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  model.UserRole
}

// SystemActor performs bootstrap work such as seeding.
var SystemActor = Actor{Name: "system", Role: model.RoleSuperAdmin}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == model.RoleSuperAdmin
}

// Label is the value written to performed_by and created_by columns.
func (a Actor) Label() string {
	if a.Email != "" {
		return a.Email
	}
	if a.Name != "" {
		return a.Name
	}
	return "system"
}

// ActorFor returns the actor acting as admin.
func ActorFor(admin *model.Admin) Actor {
	return Actor{ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: admin.Role}
}
