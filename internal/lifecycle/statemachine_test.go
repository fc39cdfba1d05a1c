// internal/lifecycle/statemachine_test.go
package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workbridge/workbridge-backend/internal/models"
)

func TestLegalTransitions(t *testing.T) {
	cases := []struct {
		from models.ApplicationStatus
		to   models.ApplicationStatus
		role models.UserRole
	}{
		{models.ApplicationStatusPending, models.ApplicationStatusUnderReview, models.UserRoleClient},
		{models.ApplicationStatusPending, models.ApplicationStatusAccepted, models.UserRoleClient},
		{models.ApplicationStatusUnderReview, models.ApplicationStatusAccepted, models.UserRoleClient},
		{models.ApplicationStatusPending, models.ApplicationStatusRejected, models.UserRoleClient},
		{models.ApplicationStatusUnderReview, models.ApplicationStatusRejected, models.UserRoleClient},
		{models.ApplicationStatusPending, models.ApplicationStatusWithdrawn, models.UserRoleProfessional},
		{models.ApplicationStatusUnderReview, models.ApplicationStatusWithdrawn, models.UserRoleProfessional},
		{models.ApplicationStatusPending, models.ApplicationStatusExpired, RoleSystem},
		{models.ApplicationStatusUnderReview, models.ApplicationStatusExpired, RoleSystem},
	}

	for _, tc := range cases {
		assert.True(t, CanTransition(tc.from, tc.to, tc.role),
			"%s -> %s by %s should be legal", tc.from, tc.to, tc.role)
		assert.NoError(t, ValidateTransition(tc.from, tc.to, tc.role))
	}
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.ApplicationStatus
		to   models.ApplicationStatus
		role models.UserRole
	}{
		{"client cannot withdraw", models.ApplicationStatusPending, models.ApplicationStatusWithdrawn, models.UserRoleClient},
		{"professional cannot accept", models.ApplicationStatusPending, models.ApplicationStatusAccepted, models.UserRoleProfessional},
		{"professional cannot reject", models.ApplicationStatusUnderReview, models.ApplicationStatusRejected, models.UserRoleProfessional},
		{"client cannot expire", models.ApplicationStatusPending, models.ApplicationStatusExpired, models.UserRoleClient},
		{"no review after acceptance", models.ApplicationStatusAccepted, models.ApplicationStatusUnderReview, models.UserRoleClient},
		{"no acceptance after rejection", models.ApplicationStatusRejected, models.ApplicationStatusAccepted, models.UserRoleClient},
		{"no acceptance after withdrawal", models.ApplicationStatusWithdrawn, models.ApplicationStatusAccepted, models.UserRoleClient},
		{"no revival of expired", models.ApplicationStatusExpired, models.ApplicationStatusPending, models.UserRoleAdmin},
		{"no self transition", models.ApplicationStatusPending, models.ApplicationStatusPending, models.UserRoleClient},
		{"no backwards transition", models.ApplicationStatusUnderReview, models.ApplicationStatusPending, models.UserRoleClient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, CanTransition(tc.from, tc.to, tc.role))
			err := ValidateTransition(tc.from, tc.to, tc.role)
			assert.True(t, errors.Is(err, ErrInvalidStateTransition))
		})
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	terminal := []models.ApplicationStatus{
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWithdrawn,
		models.ApplicationStatusExpired,
	}
	all := []models.ApplicationStatus{
		models.ApplicationStatusPending,
		models.ApplicationStatusUnderReview,
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWithdrawn,
		models.ApplicationStatusExpired,
	}
	roles := []models.UserRole{
		models.UserRoleClient,
		models.UserRoleProfessional,
		models.UserRoleAdmin,
		RoleSystem,
	}

	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			for _, role := range roles {
				assert.False(t, CanTransition(from, to, role),
					"terminal status %s must not transition to %s", from, to)
			}
		}
	}
}
