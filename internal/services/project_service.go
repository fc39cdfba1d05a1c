// internal/services/project_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/workbridge-backend/internal/models"
	"github.com/workbridge/workbridge-backend/internal/utils"
)

type ProjectService struct {
	db *gorm.DB
}

type CreateProjectRequest struct {
	Title       string     `json:"title" validate:"required,min=5,max=200"`
	Description string     `json:"description" validate:"required,min=20"`
	Category    string     `json:"category" validate:"required,max=50"`
	BudgetMin   *float64   `json:"budget_min,omitempty" validate:"omitempty,min=0"`
	BudgetMax   float64    `json:"budget_max" validate:"required,gt=0"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

type CompleteProjectRequest struct {
	Rating   float64 `json:"rating" validate:"required,min=1,max=5"`
	Feedback string  `json:"feedback,omitempty"`
}

type ProjectSearchParams struct {
	utils.PaginationParams
	Status   *models.ProjectStatus
	Category string
	Search   string
	ClientID *uuid.UUID
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) CreateProject(clientID uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.BudgetMin != nil && *req.BudgetMin > req.BudgetMax {
		return nil, errors.New("minimum budget cannot exceed maximum budget")
	}

	project := &models.Project{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      models.ProjectStatusDraft,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Deadline:    req.Deadline,
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// PublishProject opens a draft for applications.
func (s *ProjectService) PublishProject(projectID, clientID uuid.UUID) (*models.Project, error) {
	project, err := s.ownedProject(projectID, clientID)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusDraft {
		return nil, errors.New("only draft projects can be published")
	}

	project.Status = models.ProjectStatusOpen
	if err := s.db.Save(project).Error; err != nil {
		return nil, fmt.Errorf("failed to publish project: %w", err)
	}

	return project, nil
}

func (s *ProjectService) GetProject(projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) SearchProjects(params ProjectSearchParams) ([]models.Project, int64, error) {
	query := s.db.Model(&models.Project{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.ClientID != nil {
		query = query.Where("client_id = ?", *params.ClientID)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	sortField := params.Sort
	switch sortField {
	case "created_at", "updated_at", "budget_max", "deadline":
	default:
		sortField = "created_at"
	}
	query = query.Order(sortField + " " + params.Order).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit)

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}

	return projects, total, nil
}

// CompleteProject closes an assigned project and folds the outcome into the
// professional's track record, which feeds future priority scores.
func (s *ProjectService) CompleteProject(projectID, clientID uuid.UUID, req *CompleteProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	project, err := s.ownedProject(projectID, clientID)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectStatusAssigned || project.AssignedProfessionalID == nil {
		return nil, errors.New("only assigned projects can be completed")
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		project.Status = models.ProjectStatusCompleted
		project.CompletedAt = &now
		if err := tx.Save(project).Error; err != nil {
			return fmt.Errorf("failed to complete project: %w", err)
		}

		var profile models.ProfessionalProfile
		if err := tx.First(&profile, "user_id = ?", *project.AssignedProfessionalID).Error; err != nil {
			return fmt.Errorf("professional profile not found: %w", err)
		}

		// Rolling average over completed projects.
		total := profile.AverageRating*float64(profile.CompletedProjects) + req.Rating
		profile.CompletedProjects++
		profile.AverageRating = total / float64(profile.CompletedProjects)
		if profile.AssignedProjects > 0 {
			profile.CompletionRate = float64(profile.CompletedProjects) / float64(profile.AssignedProjects) * 100
		}

		if err := tx.Save(&profile).Error; err != nil {
			return fmt.Errorf("failed to update track record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) ownedProject(projectID, clientID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("project not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if project.ClientID != clientID {
		return nil, errors.New("unauthorized to manage this project")
	}

	return &project, nil
}
