// internal/lifecycle/statemachine.go
package lifecycle

import (
	"fmt"

	"github.com/workbridge/workbridge-backend/internal/models"
)

// RoleSystem identifies internal actors such as the deadline sweep. It is
// never stored on a user row.
const RoleSystem models.UserRole = "system"

type edge struct {
	from models.ApplicationStatus
	to   models.ApplicationStatus
}

// legalTransitions maps each legal status edge to the actor roles allowed to
// drive it. Client-driven edges additionally require project ownership, which
// the access guard checks; professional-driven edges require authorship.
var legalTransitions = map[edge][]models.UserRole{
	{models.ApplicationStatusPending, models.ApplicationStatusUnderReview}: {models.UserRoleClient},

	{models.ApplicationStatusPending, models.ApplicationStatusAccepted}:     {models.UserRoleClient},
	{models.ApplicationStatusUnderReview, models.ApplicationStatusAccepted}: {models.UserRoleClient},

	{models.ApplicationStatusPending, models.ApplicationStatusRejected}:     {models.UserRoleClient},
	{models.ApplicationStatusUnderReview, models.ApplicationStatusRejected}: {models.UserRoleClient},

	{models.ApplicationStatusPending, models.ApplicationStatusWithdrawn}:     {models.UserRoleProfessional},
	{models.ApplicationStatusUnderReview, models.ApplicationStatusWithdrawn}: {models.UserRoleProfessional},

	{models.ApplicationStatusPending, models.ApplicationStatusExpired}:     {RoleSystem},
	{models.ApplicationStatusUnderReview, models.ApplicationStatusExpired}: {RoleSystem},
}

// CanTransition reports whether role may move an application from one status
// to another.
func CanTransition(from, to models.ApplicationStatus, role models.UserRole) bool {
	roles, ok := legalTransitions[edge{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidStateTransition for any edge outside
// the legal table, including any attempt to leave a terminal status.
func ValidateTransition(from, to models.ApplicationStatus, role models.UserRole) error {
	if !CanTransition(from, to, role) {
		return fmt.Errorf("%s -> %s by %s: %w", from, to, role, ErrInvalidStateTransition)
	}
	return nil
}
