// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a professional's bid on a project. Status only ever changes
// through the lifecycle state machine; PriorityScore is a recomputable cache,
// not a source of truth.
type Application struct {
	BaseModel
	ProfessionalID       uuid.UUID         `json:"professional_id" gorm:"type:uuid;not null;uniqueIndex:idx_applications_professional_project"`
	ProjectID            uuid.UUID         `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_applications_professional_project;index"`
	CoverLetter          string            `json:"cover_letter" gorm:"type:text;not null"`
	ProposedRate         *float64          `json:"proposed_rate"`
	ProposedTimelineDays *int              `json:"proposed_timeline_days"`
	Status               ApplicationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PriorityScore        float64           `json:"priority_score" gorm:"default:0"`
	ReviewedAt           *time.Time        `json:"reviewed_at"`
	ReviewedBy           *uuid.UUID        `json:"reviewed_by" gorm:"type:uuid"`
	RejectionReason      string            `json:"rejection_reason,omitempty" gorm:"type:text"`
	ClientFeedback       string            `json:"client_feedback,omitempty" gorm:"type:text"`
	Metadata             JSONB             `json:"metadata" gorm:"type:jsonb"`
}
