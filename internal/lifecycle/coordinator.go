// internal/lifecycle/coordinator.go
package lifecycle

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workbridge/workbridge-backend/internal/models"
)

const (
	minCoverLetterLen  = 50
	maxCoverLetterLen  = 2000
	minRejectReasonLen = 10

	// Page size for walking the cascade of rejected siblings after an
	// accept. Every page is visited, so the cascade size is unbounded.
	siblingNotifyPageSize = 100

	// SiblingRejectionReason is recorded on every open sibling application
	// when an accept cascades.
	SiblingRejectionReason = "another candidate was selected"
)

// Coordinator orchestrates the application lifecycle: it authorizes the
// actor, validates the status transition, and for the accept path performs
// the cross-row update as one atomic unit. All synchronization is delegated
// to the repository's transactional guarantees plus conditional writes; the
// coordinator holds no in-process locks.
type Coordinator struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func NewCoordinator(repo Repository, notifier Notifier) *Coordinator {
	return &Coordinator{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

type SubmitInput struct {
	CoverLetter          string
	ProposedRate         *float64
	ProposedTimelineDays *int
	Metadata             map[string]interface{}
}

type EvaluateInput struct {
	Score    *float64
	Feedback string
}

type ApproveInput struct {
	FinalAmount *float64
	Message     string
}

type ListResult struct {
	Items         []models.Application               `json:"items"`
	PageInfo      PageInfo                           `json:"page_info"`
	StatusSummary map[models.ApplicationStatus]int64 `json:"status_summary"`
}

type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Submit creates a new pending application for the acting professional. The
// priority score is computed with the full weighted formula up front; there
// is no unscored placeholder state.
func (c *Coordinator) Submit(ctx context.Context, actor Actor, projectID uuid.UUID, in SubmitInput) (*models.Application, error) {
	if actor.Role != models.UserRoleProfessional {
		return nil, fmt.Errorf("only professionals can apply: %w", ErrForbidden)
	}
	if err := validateSubmitInput(in); err != nil {
		return nil, err
	}

	project, err := c.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptsApplications() {
		return nil, ErrProjectNotOpen
	}

	exists, err := c.repo.HasApplication(ctx, actor.ID, projectID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateApplication
	}

	now := c.now()
	app := &models.Application{
		ProfessionalID:       actor.ID,
		ProjectID:            projectID,
		CoverLetter:          in.CoverLetter,
		ProposedRate:         in.ProposedRate,
		ProposedTimelineDays: in.ProposedTimelineDays,
		Status:               models.ApplicationStatusPending,
		Metadata:             models.JSONB(in.Metadata),
	}
	app.PriorityScore = c.scoreFor(ctx, app, project, now, now)

	if err := c.repo.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	c.notifyAsync(project.ClientID, EventApplicationSubmitted, map[string]interface{}{
		"application_id": app.ID.String(),
		"project_id":     projectID.String(),
		"priority_score": app.PriorityScore,
	})

	return app, nil
}

// List returns the applications visible to the actor, with a per-status
// summary over the same scope. The scoping is a server-side row filter the
// caller cannot override.
func (c *Coordinator) List(ctx context.Context, actor Actor, filter ApplicationFilter, page Page) (*ListResult, error) {
	scoped, ok := ScopeFilter(actor, filter)
	if !ok {
		return nil, ErrForbidden
	}

	items, total, err := c.repo.ListApplications(ctx, scoped, page)
	if err != nil {
		return nil, err
	}

	summary, err := c.repo.CountApplicationsByStatus(ctx, scoped)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / page.Size
	if int(total)%page.Size != 0 {
		totalPages++
	}

	return &ListResult{
		Items: items,
		PageInfo: PageInfo{
			Page:       page.Number,
			Limit:      page.Size,
			Total:      total,
			TotalPages: totalPages,
		},
		StatusSummary: summary,
	}, nil
}

func (c *Coordinator) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Application, error) {
	app, project, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewApplication(actor, app, project) {
		return nil, ErrForbidden
	}
	return app, nil
}

// Evaluate moves a pending application under review and records the client's
// score and/or feedback. No cross-row effects.
func (c *Coordinator) Evaluate(ctx context.Context, actor Actor, id uuid.UUID, in EvaluateInput) (*models.Application, error) {
	app, project, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanDecide(actor, project) {
		return nil, ErrForbidden
	}
	if err := ValidateTransition(app.Status, models.ApplicationStatusUnderReview, actor.Role); err != nil {
		return nil, err
	}
	if in.Score != nil && (*in.Score < minScore || *in.Score > maxScore) {
		return nil, fmt.Errorf("score must be between %v and %v: %w", minScore, maxScore, ErrValidation)
	}

	now := c.now()
	app.Status = models.ApplicationStatusUnderReview
	if app.ReviewedAt == nil {
		app.ReviewedAt = &now
		reviewer := actor.ID
		app.ReviewedBy = &reviewer
	}
	if in.Score != nil {
		app.PriorityScore = *in.Score
	}
	if in.Feedback != "" {
		app.ClientFeedback = in.Feedback
	}

	if err := c.repo.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}

	c.notifyAsync(app.ProfessionalID, EventApplicationUnderReview, map[string]interface{}{
		"application_id": app.ID.String(),
		"project_id":     app.ProjectID.String(),
	})

	return app, nil
}

// Approve accepts the application, assigns the project, and rejects every
// open sibling as one indivisible unit. Two concurrent approvals for
// the same project resolve through the conditional project claim: exactly
// one wins, the other gets ErrConflictAssignment. Losing the race is an
// expected outcome, not a fault.
func (c *Coordinator) Approve(ctx context.Context, actor Actor, id uuid.UUID, in ApproveInput) (*models.Application, error) {
	app, project, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanDecide(actor, project) {
		return nil, ErrForbidden
	}
	// Cheap optimistic check; the conditional writes below re-verify under
	// the transaction.
	if err := ValidateTransition(app.Status, models.ApplicationStatusAccepted, actor.Role); err != nil {
		return nil, err
	}

	finalAmount := in.FinalAmount
	if finalAmount == nil {
		finalAmount = app.ProposedRate
	}

	now := c.now()
	err = c.repo.Atomically(ctx, func(tx Repository) error {
		claimed, err := tx.ClaimProject(ctx, project.ID, app.ProfessionalID, finalAmount, now)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrConflictAssignment
		}

		accepted, err := tx.AcceptApplication(ctx, app.ID, actor.ID, finalAmount, now)
		if err != nil {
			return err
		}
		if !accepted {
			// Withdrawn, rejected or expired between the optimistic check
			// and the claim. The claim rolls back with the unit.
			return ErrConflictAssignment
		}

		_, err = tx.RejectSiblings(ctx, project.ID, app.ID, actor.ID, SiblingRejectionReason, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	accepted, err := c.repo.GetApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	c.notifyAsync(accepted.ProfessionalID, EventApplicationAccepted, map[string]interface{}{
		"application_id": accepted.ID.String(),
		"project_id":     project.ID.String(),
		"message":        in.Message,
	})
	c.notifyRejectedSiblings(ctx, project.ID, accepted.ID)

	return accepted, nil
}

// Reject is a single-row terminal transition; only accept cascades.
func (c *Coordinator) Reject(ctx context.Context, actor Actor, id uuid.UUID, reason, feedback string) (*models.Application, error) {
	if utf8.RuneCountInString(reason) < minRejectReasonLen {
		return nil, fmt.Errorf("rejection reason must be at least %d characters: %w", minRejectReasonLen, ErrValidation)
	}

	app, project, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanDecide(actor, project) {
		return nil, ErrForbidden
	}
	if err := ValidateTransition(app.Status, models.ApplicationStatusRejected, actor.Role); err != nil {
		return nil, err
	}

	now := c.now()
	reviewer := actor.ID
	app.Status = models.ApplicationStatusRejected
	app.RejectionReason = reason
	if feedback != "" {
		app.ClientFeedback = feedback
	}
	if app.ReviewedAt == nil {
		app.ReviewedAt = &now
		app.ReviewedBy = &reviewer
	}

	if err := c.repo.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}

	c.notifyAsync(app.ProfessionalID, EventApplicationRejected, map[string]interface{}{
		"application_id": app.ID.String(),
		"project_id":     app.ProjectID.String(),
		"reason":         reason,
	})

	return app, nil
}

// Withdraw is professional-only and legal from pending or under review.
func (c *Coordinator) Withdraw(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Application, error) {
	app, _, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanWithdraw(actor, app) {
		return nil, ErrForbidden
	}
	if err := ValidateTransition(app.Status, models.ApplicationStatusWithdrawn, actor.Role); err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatusWithdrawn
	if reason != "" {
		if app.Metadata == nil {
			app.Metadata = models.JSONB{}
		}
		app.Metadata["withdrawal_reason"] = reason
	}

	if err := c.repo.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}

	project, err := c.repo.GetProject(ctx, app.ProjectID)
	if err == nil {
		c.notifyAsync(project.ClientID, EventApplicationWithdrawn, map[string]interface{}{
			"application_id": app.ID.String(),
			"project_id":     app.ProjectID.String(),
		})
	}

	return app, nil
}

// RecomputeScore re-runs the weighted formula and writes only the cached
// score. Idempotent; never changes status.
func (c *Coordinator) RecomputeScore(ctx context.Context, actor Actor, id uuid.UUID) (float64, error) {
	app, project, err := c.load(ctx, id)
	if err != nil {
		return 0, err
	}
	if !CanRecomputeScore(actor, project) {
		return 0, ErrForbidden
	}

	score := c.scoreFor(ctx, app, project, app.CreatedAt, c.now())
	if err := c.repo.UpdatePriorityScore(ctx, app.ID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// ExpireStale bulk-transitions open applications created before the cutoff
// to expired. Driven by the deadline policy, not by any user.
func (c *Coordinator) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	return c.repo.ExpireApplications(ctx, before)
}

func (c *Coordinator) load(ctx context.Context, id uuid.UUID) (*models.Application, *models.Project, error) {
	app, err := c.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := c.repo.GetProject(ctx, app.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return app, project, nil
}

func (c *Coordinator) scoreFor(ctx context.Context, app *models.Application, project *models.Project, submittedAt, now time.Time) float64 {
	in := ScoreInput{
		ProposedRate: app.ProposedRate,
		BudgetMax:    project.BudgetMax,
		SubmittedAt:  submittedAt,
		Now:          now,
	}
	if profile, err := c.repo.GetProfessionalProfile(ctx, app.ProfessionalID); err == nil {
		in.ExperienceYears = profile.ExperienceYears
		in.AverageRating = profile.AverageRating
		in.CompletionRate = profile.CompletionRate
	}
	return PriorityScore(in)
}

func (c *Coordinator) notifyRejectedSiblings(ctx context.Context, projectID, winnerID uuid.UUID) {
	rejected := models.ApplicationStatusRejected
	filter := ApplicationFilter{
		ProjectID: &projectID,
		Status:    &rejected,
	}
	for pageNum := 1; ; pageNum++ {
		siblings, _, err := c.repo.ListApplications(ctx, filter, Page{
			Number: pageNum,
			Size:   siblingNotifyPageSize,
			Sort:   "created_at",
			Order:  "asc",
		})
		if err != nil {
			logrus.WithError(err).Warn("Failed to load rejected siblings for notification")
			return
		}
		for _, sibling := range siblings {
			if sibling.ID == winnerID || sibling.RejectionReason != SiblingRejectionReason {
				continue
			}
			c.notifyAsync(sibling.ProfessionalID, EventApplicationRejected, map[string]interface{}{
				"application_id": sibling.ID.String(),
				"project_id":     projectID.String(),
				"reason":         SiblingRejectionReason,
			})
		}
		if len(siblings) < siblingNotifyPageSize {
			return
		}
	}
}

// notifyAsync dispatches out-of-band. Notifier failures are the notifier's to
// log; they never reach the caller and never affect the transaction.
func (c *Coordinator) notifyAsync(userID uuid.UUID, eventType string, payload map[string]interface{}) {
	if c.notifier == nil {
		return
	}
	go c.notifier.Notify(userID, eventType, payload)
}

func validateSubmitInput(in SubmitInput) error {
	letterLen := utf8.RuneCountInString(in.CoverLetter)
	if letterLen < minCoverLetterLen || letterLen > maxCoverLetterLen {
		return fmt.Errorf("cover letter must be %d-%d characters: %w", minCoverLetterLen, maxCoverLetterLen, ErrValidation)
	}
	if in.ProposedRate != nil && *in.ProposedRate < 0 {
		return fmt.Errorf("proposed rate must not be negative: %w", ErrValidation)
	}
	if in.ProposedTimelineDays != nil && *in.ProposedTimelineDays <= 0 {
		return fmt.Errorf("proposed timeline must be a positive number of days: %w", ErrValidation)
	}
	return nil
}
