// internal/lifecycle/coordinator_test.go
package lifecycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/workbridge/workbridge-backend/internal/models"
)

// memoryRepo is an in-memory Repository with the same conditional-write
// semantics as the Postgres implementation: guarded updates that report
// whether their precondition held, and transactions that roll back on error.
type memoryRepo struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	apps     map[uuid.UUID]models.Application
	projects map[uuid.UUID]models.Project
	profiles map[uuid.UUID]models.ProfessionalProfile
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		apps:     make(map[uuid.UUID]models.Application),
		projects: make(map[uuid.UUID]models.Project),
		profiles: make(map[uuid.UUID]models.ProfessionalProfile),
	}
}

func copyApp(app models.Application) models.Application {
	out := app
	if app.Metadata != nil {
		out.Metadata = models.JSONB{}
		for k, v := range app.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func (m *memoryRepo) CreateApplication(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.apps {
		if existing.ProfessionalID == app.ProfessionalID && existing.ProjectID == app.ProjectID {
			return ErrDuplicateApplication
		}
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	m.apps[app.ID] = copyApp(*app)
	return nil
}

func (m *memoryRepo) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyApp(app)
	return &out, nil
}

func (m *memoryRepo) HasApplication(ctx context.Context, professionalID, projectID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, app := range m.apps {
		if app.ProfessionalID == professionalID && app.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) UpdateApplication(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.apps[app.ID]; !ok {
		return ErrNotFound
	}
	m.apps[app.ID] = copyApp(*app)
	return nil
}

func (m *memoryRepo) matches(app models.Application, filter ApplicationFilter) bool {
	if filter.Status != nil && app.Status != *filter.Status {
		return false
	}
	if filter.ProjectID != nil && app.ProjectID != *filter.ProjectID {
		return false
	}
	if filter.ProfessionalID != nil && app.ProfessionalID != *filter.ProfessionalID {
		return false
	}
	if filter.ClientID != nil {
		project, ok := m.projects[app.ProjectID]
		if !ok || project.ClientID != *filter.ClientID {
			return false
		}
	}
	return true
}

func (m *memoryRepo) ListApplications(ctx context.Context, filter ApplicationFilter, page Page) ([]models.Application, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Application
	for _, app := range m.apps {
		if m.matches(app, filter) {
			out = append(out, copyApp(app))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})

	total := int64(len(out))
	if page.Size > 0 {
		start := (page.Number - 1) * page.Size
		if start > len(out) {
			start = len(out)
		}
		end := start + page.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *memoryRepo) CountApplicationsByStatus(ctx context.Context, filter ApplicationFilter) (map[models.ApplicationStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filter.Status = nil
	summary := make(map[models.ApplicationStatus]int64)
	for _, app := range m.apps {
		if m.matches(app, filter) {
			summary[app.Status]++
		}
	}
	return summary, nil
}

func (m *memoryRepo) UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return ErrNotFound
	}
	app.PriorityScore = score
	m.apps[id] = app
	return nil
}

func (m *memoryRepo) ExpireApplications(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired int64
	for id, app := range m.apps {
		open := app.Status == models.ApplicationStatusPending || app.Status == models.ApplicationStatusUnderReview
		if open && app.CreatedAt.Before(before) {
			app.Status = models.ApplicationStatusExpired
			m.apps[id] = app
			expired++
		}
	}
	return expired, nil
}

func (m *memoryRepo) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := project
	return &out, nil
}

func (m *memoryRepo) GetProfessionalProfile(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := profile
	return &out, nil
}

func (m *memoryRepo) ClaimProject(ctx context.Context, projectID, professionalID uuid.UUID, finalAmount *float64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[projectID]
	if !ok || project.Status != models.ProjectStatusOpen || project.AssignedProfessionalID != nil {
		return false, nil
	}
	assigned := professionalID
	project.Status = models.ProjectStatusAssigned
	project.AssignedProfessionalID = &assigned
	project.FinalAmount = finalAmount
	project.AssignedAt = &now
	m.projects[projectID] = project

	if profile, ok := m.profiles[professionalID]; ok {
		profile.AssignedProjects++
		m.profiles[professionalID] = profile
	}
	return true, nil
}

func (m *memoryRepo) AcceptApplication(ctx context.Context, id, reviewerID uuid.UUID, finalAmount *float64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return false, nil
	}
	if app.Status != models.ApplicationStatusPending && app.Status != models.ApplicationStatusUnderReview {
		return false, nil
	}
	app.Status = models.ApplicationStatusAccepted
	app.ReviewedAt = &now
	reviewer := reviewerID
	app.ReviewedBy = &reviewer
	if finalAmount != nil {
		if app.Metadata == nil {
			app.Metadata = models.JSONB{}
		}
		app.Metadata["final_rate"] = *finalAmount
	}
	m.apps[id] = app
	return true, nil
}

func (m *memoryRepo) RejectSiblings(ctx context.Context, projectID, winnerID, reviewerID uuid.UUID, reason string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rejected int64
	for id, app := range m.apps {
		if app.ProjectID != projectID || app.ID == winnerID {
			continue
		}
		if app.Status != models.ApplicationStatusPending && app.Status != models.ApplicationStatusUnderReview {
			continue
		}
		app.Status = models.ApplicationStatusRejected
		app.RejectionReason = reason
		app.ReviewedAt = &now
		reviewer := reviewerID
		app.ReviewedBy = &reviewer
		m.apps[id] = app
		rejected++
	}
	return rejected, nil
}

// Atomically serializes transactions and restores the pre-transaction snapshot
// when fn fails, mirroring a database rollback.
func (m *memoryRepo) Atomically(ctx context.Context, fn func(Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	apps := make(map[uuid.UUID]models.Application, len(m.apps))
	for id, app := range m.apps {
		apps[id] = copyApp(app)
	}
	projects := make(map[uuid.UUID]models.Project, len(m.projects))
	for id, project := range m.projects {
		projects[id] = project
	}
	profiles := make(map[uuid.UUID]models.ProfessionalProfile, len(m.profiles))
	for id, profile := range m.profiles {
		profiles[id] = profile
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.apps = apps
		m.projects = projects
		m.profiles = profiles
		m.mu.Unlock()
		return err
	}
	return nil
}

type notifierEvent struct {
	userID    uuid.UUID
	eventType string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (n *recordingNotifier) Notify(userID uuid.UUID, eventType string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifierEvent{userID: userID, eventType: eventType})
}

func (n *recordingNotifier) received(userID uuid.UUID, eventType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.userID == userID && e.eventType == eventType {
			return true
		}
	}
	return false
}

type CoordinatorTestSuite struct {
	suite.Suite
	repo        *memoryRepo
	notifier    *recordingNotifier
	coordinator *Coordinator
	now         time.Time

	client       Actor
	professional Actor
	rival        Actor
	admin        Actor
	project      *models.Project
}

func (suite *CoordinatorTestSuite) SetupTest() {
	suite.repo = newMemoryRepo()
	suite.notifier = &recordingNotifier{}
	suite.now = time.Now().UTC()

	suite.coordinator = NewCoordinator(suite.repo, suite.notifier)
	suite.coordinator.now = func() time.Time { return suite.now }

	suite.client = Actor{ID: uuid.New(), Role: models.UserRoleClient}
	suite.professional = Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
	suite.rival = Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
	suite.admin = Actor{ID: uuid.New(), Role: models.UserRoleAdmin}

	suite.project = suite.addProject(suite.client.ID, models.ProjectStatusOpen, 1000)

	suite.addProfile(suite.professional.ID, 5, 4.5, 90)
	suite.addProfile(suite.rival.ID, 2, 4.0, 80)
}

func (suite *CoordinatorTestSuite) addProject(clientID uuid.UUID, status models.ProjectStatus, budgetMax float64) *models.Project {
	project := models.Project{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: suite.now},
		ClientID:  clientID,
		Title:     "Marketplace backend",
		Status:    status,
		BudgetMax: budgetMax,
	}
	suite.repo.projects[project.ID] = project
	return &project
}

func (suite *CoordinatorTestSuite) addProfile(userID uuid.UUID, years int, rating, completion float64) {
	suite.repo.profiles[userID] = models.ProfessionalProfile{
		BaseModel:       models.BaseModel{ID: uuid.New()},
		UserID:          userID,
		ExperienceYears: years,
		AverageRating:   rating,
		CompletionRate:  completion,
	}
}

func (suite *CoordinatorTestSuite) submit(actor Actor, rate float64) *models.Application {
	app, err := suite.coordinator.Submit(context.Background(), actor, suite.project.ID, SubmitInput{
		CoverLetter:  strings.Repeat("I have shipped systems like this before. ", 3),
		ProposedRate: &rate,
	})
	suite.Require().NoError(err)
	return app
}

func (suite *CoordinatorTestSuite) TestSubmitComputesFullScore() {
	app := suite.submit(suite.professional, 800)

	assert.Equal(suite.T(), models.ApplicationStatusPending, app.Status)
	assert.InDelta(suite.T(), 86.5, app.PriorityScore, 0.0001)

	assert.Eventually(suite.T(), func() bool {
		return suite.notifier.received(suite.client.ID, EventApplicationSubmitted)
	}, time.Second, 10*time.Millisecond)
}

func (suite *CoordinatorTestSuite) TestSubmitRejectsNonProfessionals() {
	rate := 800.0
	_, err := suite.coordinator.Submit(context.Background(), suite.client, suite.project.ID, SubmitInput{
		CoverLetter:  strings.Repeat("long enough cover letter text here ", 3),
		ProposedRate: &rate,
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *CoordinatorTestSuite) TestSubmitRejectsShortCoverLetter() {
	_, err := suite.coordinator.Submit(context.Background(), suite.professional, suite.project.ID, SubmitInput{
		CoverLetter: "too short",
	})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *CoordinatorTestSuite) TestSubmitRejectsDuplicates() {
	suite.submit(suite.professional, 800)

	rate := 750.0
	_, err := suite.coordinator.Submit(context.Background(), suite.professional, suite.project.ID, SubmitInput{
		CoverLetter:  strings.Repeat("a revised and even better proposal ", 3),
		ProposedRate: &rate,
	})
	assert.ErrorIs(suite.T(), err, ErrDuplicateApplication)
}

func (suite *CoordinatorTestSuite) TestSubmitRequiresOpenProject() {
	draft := suite.addProject(suite.client.ID, models.ProjectStatusDraft, 1000)

	rate := 800.0
	_, err := suite.coordinator.Submit(context.Background(), suite.professional, draft.ID, SubmitInput{
		CoverLetter:  strings.Repeat("long enough cover letter text here ", 3),
		ProposedRate: &rate,
	})
	assert.ErrorIs(suite.T(), err, ErrProjectNotOpen)
}

func (suite *CoordinatorTestSuite) TestEvaluateMovesUnderReview() {
	app := suite.submit(suite.professional, 800)

	score := 72.0
	evaluated, err := suite.coordinator.Evaluate(context.Background(), suite.client, app.ID, EvaluateInput{
		Score:    &score,
		Feedback: "Strong portfolio, rate is reasonable",
	})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.ApplicationStatusUnderReview, evaluated.Status)
	assert.Equal(suite.T(), 72.0, evaluated.PriorityScore)
	assert.Equal(suite.T(), "Strong portfolio, rate is reasonable", evaluated.ClientFeedback)
	suite.Require().NotNil(evaluated.ReviewedAt)
	suite.Require().NotNil(evaluated.ReviewedBy)
	assert.Equal(suite.T(), suite.client.ID, *evaluated.ReviewedBy)
}

func (suite *CoordinatorTestSuite) TestEvaluateForbiddenForOtherClients() {
	app := suite.submit(suite.professional, 800)

	stranger := Actor{ID: uuid.New(), Role: models.UserRoleClient}
	_, err := suite.coordinator.Evaluate(context.Background(), stranger, app.ID, EvaluateInput{})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *CoordinatorTestSuite) TestEvaluateRejectsOutOfRangeScore() {
	app := suite.submit(suite.professional, 800)

	score := 150.0
	_, err := suite.coordinator.Evaluate(context.Background(), suite.client, app.ID, EvaluateInput{Score: &score})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *CoordinatorTestSuite) TestApproveCascades() {
	winner := suite.submit(suite.professional, 800)
	loser := suite.submit(suite.rival, 900)

	amount := 850.0
	accepted, err := suite.coordinator.Approve(context.Background(), suite.client, winner.ID, ApproveInput{
		FinalAmount: &amount,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusAccepted, accepted.Status)

	project, err := suite.repo.GetProject(context.Background(), suite.project.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ProjectStatusAssigned, project.Status)
	suite.Require().NotNil(project.AssignedProfessionalID)
	assert.Equal(suite.T(), suite.professional.ID, *project.AssignedProfessionalID)
	suite.Require().NotNil(project.FinalAmount)
	assert.Equal(suite.T(), 850.0, *project.FinalAmount)

	rejected, err := suite.repo.GetApplication(context.Background(), loser.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusRejected, rejected.Status)
	assert.Equal(suite.T(), SiblingRejectionReason, rejected.RejectionReason)

	assert.Eventually(suite.T(), func() bool {
		return suite.notifier.received(suite.professional.ID, EventApplicationAccepted) &&
			suite.notifier.received(suite.rival.ID, EventApplicationRejected)
	}, time.Second, 10*time.Millisecond)
}

func (suite *CoordinatorTestSuite) TestApproveNotifiesEveryRejectedSibling() {
	winner := suite.submit(suite.professional, 800)

	// More losers than one notification page holds.
	losers := make([]Actor, siblingNotifyPageSize+19)
	for i := range losers {
		losers[i] = Actor{ID: uuid.New(), Role: models.UserRoleProfessional}
		suite.submit(losers[i], 900)
	}

	_, err := suite.coordinator.Approve(context.Background(), suite.client, winner.ID, ApproveInput{})
	suite.Require().NoError(err)

	assert.Eventually(suite.T(), func() bool {
		for _, loser := range losers {
			if !suite.notifier.received(loser.ID, EventApplicationRejected) {
				return false
			}
		}
		return true
	}, 3*time.Second, 25*time.Millisecond, "every cascaded rejection must be notified, not only the first page")
}

func (suite *CoordinatorTestSuite) TestApproveDefaultsToProposedRate() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.Approve(context.Background(), suite.client, app.ID, ApproveInput{})
	suite.Require().NoError(err)

	project, err := suite.repo.GetProject(context.Background(), suite.project.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(project.FinalAmount)
	assert.Equal(suite.T(), 800.0, *project.FinalAmount)
}

func (suite *CoordinatorTestSuite) TestApproveWithdrawnApplicationLeavesProjectUntouched() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.Withdraw(context.Background(), suite.professional, app.ID, "found other work")
	suite.Require().NoError(err)

	_, err = suite.coordinator.Approve(context.Background(), suite.client, app.ID, ApproveInput{})
	assert.ErrorIs(suite.T(), err, ErrInvalidStateTransition)

	project, err := suite.repo.GetProject(context.Background(), suite.project.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ProjectStatusOpen, project.Status)
	assert.Nil(suite.T(), project.AssignedProfessionalID)
}

func (suite *CoordinatorTestSuite) TestConcurrentApprovalsExactlyOneWins() {
	for round := 0; round < 20; round++ {
		suite.SetupTest()
		first := suite.submit(suite.professional, 800)
		second := suite.submit(suite.rival, 900)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, id := range []uuid.UUID{first.ID, second.ID} {
			wg.Add(1)
			go func(i int, id uuid.UUID) {
				defer wg.Done()
				_, errs[i] = suite.coordinator.Approve(context.Background(), suite.client, id, ApproveInput{})
			}(i, id)
		}
		wg.Wait()

		// The loser sees the assignment conflict, or the invalid transition
		// if the winner's cascade already rejected its application.
		var wins, losses int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrConflictAssignment), errors.Is(err, ErrInvalidStateTransition):
				losses++
			default:
				suite.T().Fatalf("unexpected approve error: %v", err)
			}
		}
		assert.Equal(suite.T(), 1, wins, "exactly one approval must win")
		assert.Equal(suite.T(), 1, losses, "the other approval must lose")

		summary, err := suite.repo.CountApplicationsByStatus(context.Background(), ApplicationFilter{ProjectID: &suite.project.ID})
		suite.Require().NoError(err)
		assert.Equal(suite.T(), int64(1), summary[models.ApplicationStatusAccepted])

		project, err := suite.repo.GetProject(context.Background(), suite.project.ID)
		suite.Require().NoError(err)
		assert.Equal(suite.T(), models.ProjectStatusAssigned, project.Status)
	}
}

func (suite *CoordinatorTestSuite) TestRejectRequiresMeaningfulReason() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.Reject(context.Background(), suite.client, app.ID, "nope", "")
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *CoordinatorTestSuite) TestRejectAffectsOnlyOneApplication() {
	target := suite.submit(suite.professional, 800)
	other := suite.submit(suite.rival, 900)

	rejected, err := suite.coordinator.Reject(context.Background(), suite.client, target.ID, "budget does not allow this rate", "")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusRejected, rejected.Status)

	untouched, err := suite.repo.GetApplication(context.Background(), other.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusPending, untouched.Status)

	project, err := suite.repo.GetProject(context.Background(), suite.project.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ProjectStatusOpen, project.Status)
}

func (suite *CoordinatorTestSuite) TestWithdrawByNonAuthorIsForbidden() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.Withdraw(context.Background(), suite.rival, app.ID, "")
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	_, err = suite.coordinator.Withdraw(context.Background(), suite.client, app.ID, "")
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *CoordinatorTestSuite) TestWithdrawRecordsReason() {
	app := suite.submit(suite.professional, 800)

	withdrawn, err := suite.coordinator.Withdraw(context.Background(), suite.professional, app.ID, "accepted another engagement")
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.ApplicationStatusWithdrawn, withdrawn.Status)
	assert.Equal(suite.T(), "accepted another engagement", withdrawn.Metadata["withdrawal_reason"])
}

func (suite *CoordinatorTestSuite) TestGetForbiddenForStrangers() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.Get(context.Background(), suite.rival, app.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	got, err := suite.coordinator.Get(context.Background(), suite.admin, app.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), app.ID, got.ID)
}

func (suite *CoordinatorTestSuite) TestListScopesToActor() {
	mine := suite.submit(suite.professional, 800)
	suite.submit(suite.rival, 900)

	result, err := suite.coordinator.List(context.Background(), suite.professional, ApplicationFilter{}, Page{Number: 1, Size: 20})
	suite.Require().NoError(err)
	suite.Require().Len(result.Items, 1)
	assert.Equal(suite.T(), mine.ID, result.Items[0].ID)

	// The professional cannot widen the scope to someone else's rows.
	rivalID := suite.rival.ID
	result, err = suite.coordinator.List(context.Background(), suite.professional, ApplicationFilter{ProfessionalID: &rivalID}, Page{Number: 1, Size: 20})
	suite.Require().NoError(err)
	suite.Require().Len(result.Items, 1)
	assert.Equal(suite.T(), mine.ID, result.Items[0].ID)

	result, err = suite.coordinator.List(context.Background(), suite.client, ApplicationFilter{}, Page{Number: 1, Size: 20})
	suite.Require().NoError(err)
	assert.Len(suite.T(), result.Items, 2)
	assert.Equal(suite.T(), int64(2), result.StatusSummary[models.ApplicationStatusPending])

	_, err = suite.coordinator.List(context.Background(), Actor{ID: uuid.New(), Role: "visitor"}, ApplicationFilter{}, Page{Number: 1, Size: 20})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *CoordinatorTestSuite) TestRecomputeScoreWritesOnlyTheScore() {
	app := suite.submit(suite.professional, 800)

	// The track record improved since submission.
	suite.addProfile(suite.professional.ID, 10, 5, 100)

	score, err := suite.coordinator.RecomputeScore(context.Background(), suite.admin, app.ID)
	suite.Require().NoError(err)
	assert.InDelta(suite.T(), 100, score, 0.0001)

	stored, err := suite.repo.GetApplication(context.Background(), app.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), score, stored.PriorityScore)
	assert.Equal(suite.T(), models.ApplicationStatusPending, stored.Status)
}

func (suite *CoordinatorTestSuite) TestRecomputeScoreForbiddenForProfessionals() {
	app := suite.submit(suite.professional, 800)

	_, err := suite.coordinator.RecomputeScore(context.Background(), suite.professional, app.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *CoordinatorTestSuite) TestExpireStale() {
	fresh := suite.submit(suite.professional, 800)
	stale := suite.submit(suite.rival, 900)

	old := suite.repo.apps[stale.ID]
	old.CreatedAt = suite.now.AddDate(0, 0, -45)
	suite.repo.apps[stale.ID] = old

	expired, err := suite.coordinator.ExpireStale(context.Background(), suite.now.AddDate(0, 0, -30))
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), expired)

	staleApp, err := suite.repo.GetApplication(context.Background(), stale.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusExpired, staleApp.Status)

	freshApp, err := suite.repo.GetApplication(context.Background(), fresh.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.ApplicationStatusPending, freshApp.Status)
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}
