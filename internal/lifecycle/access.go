// internal/lifecycle/access.go
package lifecycle

import (
	"github.com/google/uuid"

	"github.com/workbridge/workbridge-backend/internal/models"
)

// Actor is the resolved identity behind a request. Authentication happens at
// the transport layer; the core only ever sees an explicit actor, never
// ambient request state.
type Actor struct {
	ID   uuid.UUID
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

// CanViewApplication: the author professional, the project-owning client,
// and administrators may read an application. Nobody else.
func CanViewApplication(actor Actor, app *models.Application, project *models.Project) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role == models.UserRoleProfessional && app.ProfessionalID == actor.ID {
		return true
	}
	return actor.Role == models.UserRoleClient && project.ClientID == actor.ID
}

// CanDecide covers evaluate, approve and reject: only the client owning the
// project.
func CanDecide(actor Actor, project *models.Project) bool {
	return actor.Role == models.UserRoleClient && project.ClientID == actor.ID
}

// CanWithdraw: only the author professional.
func CanWithdraw(actor Actor, app *models.Application) bool {
	return actor.Role == models.UserRoleProfessional && app.ProfessionalID == actor.ID
}

// CanRecomputeScore: administrators and the owning client.
func CanRecomputeScore(actor Actor, project *models.Project) bool {
	return actor.IsAdmin() || (actor.Role == models.UserRoleClient && project.ClientID == actor.ID)
}

// ScopeFilter clamps a list filter to the rows the actor may see. The scoping
// is enforced here, server-side; callers cannot widen it. Returns false for
// actors with no list capability.
func ScopeFilter(actor Actor, filter ApplicationFilter) (ApplicationFilter, bool) {
	switch actor.Role {
	case models.UserRoleProfessional:
		id := actor.ID
		filter.ProfessionalID = &id
		filter.ClientID = nil
	case models.UserRoleClient:
		id := actor.ID
		filter.ClientID = &id
		filter.ProfessionalID = nil
	case models.UserRoleAdmin:
		// admins see everything; filter passes through unchanged
	default:
		return ApplicationFilter{}, false
	}
	return filter, true
}
