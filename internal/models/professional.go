// internal/models/professional.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProfessionalProfile carries the track record the priority scorer reads.
// AverageRating is on a 1-5 scale, CompletionRate in percent.
type ProfessionalProfile struct {
	BaseModel
	UserID            uuid.UUID      `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Headline          string         `json:"headline" gorm:"size:120"`
	Bio               string         `json:"bio" gorm:"type:text"`
	Skills            pq.StringArray `json:"skills" gorm:"type:text[]"`
	HourlyRate        *float64       `json:"hourly_rate"`
	ExperienceYears   int            `json:"experience_years" gorm:"default:0"`
	AverageRating     float64        `json:"average_rating" gorm:"default:0"`
	CompletionRate    float64        `json:"completion_rate" gorm:"default:0"`
	CompletedProjects int            `json:"completed_projects" gorm:"default:0"`
	AssignedProjects  int            `json:"assigned_projects" gorm:"default:0"`
	PortfolioURL      string         `json:"portfolio_url" gorm:"size:500"`
}
