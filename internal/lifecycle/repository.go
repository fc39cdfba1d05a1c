// internal/lifecycle/repository.go
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workbridge/workbridge-backend/internal/models"
)

// ApplicationFilter narrows list and summary queries. ClientID scopes to
// applications on projects owned by that client.
type ApplicationFilter struct {
	Status         *models.ApplicationStatus
	ProjectID      *uuid.UUID
	ProfessionalID *uuid.UUID
	ClientID       *uuid.UUID
}

type Page struct {
	Number int
	Size   int
	Sort   string
	Order  string
}

// Repository is the persistence seam the coordinator runs against. The three
// conditional writes (ClaimProject, AcceptApplication, RejectSiblings) report
// whether their precondition still held; combined with Atomically they are
// the only concurrency primitive the accept path needs, so the guarantee
// holds across horizontally scaled processes.
type Repository interface {
	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	HasApplication(ctx context.Context, professionalID, projectID uuid.UUID) (bool, error)
	UpdateApplication(ctx context.Context, app *models.Application) error
	ListApplications(ctx context.Context, filter ApplicationFilter, page Page) ([]models.Application, int64, error)
	CountApplicationsByStatus(ctx context.Context, filter ApplicationFilter) (map[models.ApplicationStatus]int64, error)
	UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error
	ExpireApplications(ctx context.Context, before time.Time) (int64, error)

	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetProfessionalProfile(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error)

	// ClaimProject assigns the project to the professional only if it is
	// still open and unassigned. Returns false when another accept won.
	ClaimProject(ctx context.Context, projectID, professionalID uuid.UUID, finalAmount *float64, now time.Time) (bool, error)

	// AcceptApplication marks the application accepted only if it is still
	// pending or under review.
	AcceptApplication(ctx context.Context, id, reviewerID uuid.UUID, finalAmount *float64, now time.Time) (bool, error)

	// RejectSiblings bulk-rejects every other open application for the
	// project and returns the number of rows transitioned.
	RejectSiblings(ctx context.Context, projectID, winnerID, reviewerID uuid.UUID, reason string, now time.Time) (int64, error)

	// Atomically runs fn in one transaction; fn sees a Repository bound to
	// that transaction. Any error rolls the whole unit back.
	Atomically(ctx context.Context, fn func(Repository) error) error
}

// Notifier is the best-effort side channel. Implementations must never block
// the caller and failures must never affect the transaction outcome.
type Notifier interface {
	Notify(userID uuid.UUID, eventType string, payload map[string]interface{})
}

// Notification event types.
const (
	EventApplicationSubmitted   = "application_submitted"
	EventApplicationUnderReview = "application_under_review"
	EventApplicationAccepted    = "application_accepted"
	EventApplicationRejected    = "application_rejected"
	EventApplicationWithdrawn   = "application_withdrawn"
)
