// internal/lifecycle/access_test.go
package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/workbridge/workbridge-backend/internal/models"
)

func TestViewAccess(t *testing.T) {
	author := Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
	owner := Actor{ID: uuid.New(), Role: models.UserRoleClient}
	admin := Actor{ID: uuid.New(), Role: models.UserRoleAdmin}
	otherPro := Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
	otherClient := Actor{ID: uuid.New(), Role: models.UserRoleClient}

	app := &models.Application{ProfessionalID: author.ID}
	project := &models.Project{ClientID: owner.ID}

	assert.True(t, CanViewApplication(author, app, project))
	assert.True(t, CanViewApplication(owner, app, project))
	assert.True(t, CanViewApplication(admin, app, project))
	assert.False(t, CanViewApplication(otherPro, app, project))
	assert.False(t, CanViewApplication(otherClient, app, project))
}

func TestDecisionAccess(t *testing.T) {
	owner := Actor{ID: uuid.New(), Role: models.UserRoleClient}
	admin := Actor{ID: uuid.New(), Role: models.UserRoleAdmin}
	project := &models.Project{ClientID: owner.ID}

	assert.True(t, CanDecide(owner, project))
	assert.False(t, CanDecide(admin, project), "admins observe, they do not decide")
	assert.False(t, CanDecide(Actor{ID: uuid.New(), Role: models.UserRoleClient}, project))

	assert.True(t, CanRecomputeScore(owner, project))
	assert.True(t, CanRecomputeScore(admin, project))
	assert.False(t, CanRecomputeScore(Actor{ID: owner.ID, Role: models.UserRoleProfessional}, project))
}

func TestScopeFilterClampsToActor(t *testing.T) {
	pro := Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
	client := Actor{ID: uuid.New(), Role: models.UserRoleClient}
	admin := Actor{ID: uuid.New(), Role: models.UserRoleAdmin}

	foreign := uuid.New()

	scoped, ok := ScopeFilter(pro, ApplicationFilter{ProfessionalID: &foreign, ClientID: &foreign})
	assert.True(t, ok)
	assert.Equal(t, pro.ID, *scoped.ProfessionalID)
	assert.Nil(t, scoped.ClientID)

	scoped, ok = ScopeFilter(client, ApplicationFilter{ProfessionalID: &foreign})
	assert.True(t, ok)
	assert.Equal(t, client.ID, *scoped.ClientID)
	assert.Nil(t, scoped.ProfessionalID)

	scoped, ok = ScopeFilter(admin, ApplicationFilter{ProfessionalID: &foreign})
	assert.True(t, ok)
	assert.Equal(t, foreign, *scoped.ProfessionalID)

	_, ok = ScopeFilter(Actor{ID: uuid.New(), Role: "guest"}, ApplicationFilter{})
	assert.False(t, ok)
}
