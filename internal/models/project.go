// internal/models/project.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	BaseModel
	ClientID               uuid.UUID     `json:"client_id" gorm:"type:uuid;not null;index"`
	Title                  string        `json:"title" gorm:"size:200;not null"`
	Description            string        `json:"description" gorm:"type:text;not null"`
	Category               string        `json:"category" gorm:"size:50;index"`
	Status                 ProjectStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	BudgetMin              *float64      `json:"budget_min"`
	BudgetMax              float64       `json:"budget_max" gorm:"not null"`
	Deadline               *time.Time    `json:"deadline"`
	AssignedProfessionalID *uuid.UUID    `json:"assigned_professional_id" gorm:"type:uuid;index"`
	FinalAmount            *float64      `json:"final_amount"`
	AssignedAt             *time.Time    `json:"assigned_at"`
	CompletedAt            *time.Time    `json:"completed_at"`
	EscrowPaymentID        string        `json:"escrow_payment_id,omitempty" gorm:"size:255"`
}

// AcceptsApplications reports whether new bids may still be submitted.
func (p *Project) AcceptsApplications() bool {
	return p.Status == ProjectStatusOpen && p.AssignedProfessionalID == nil
}
