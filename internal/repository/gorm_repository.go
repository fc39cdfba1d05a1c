// internal/repository/gorm_repository.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workbridge/workbridge-backend/internal/lifecycle"
	"github.com/workbridge/workbridge-backend/internal/models"
)

// GormRepository implements lifecycle.Repository on Postgres. The conditional
// writes rely on guarded UPDATE statements and RowsAffected; combined with
// Atomically they give the accept path its all-or-nothing semantics without
// any in-process lock.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return lifecycle.ErrDuplicateApplication
		}
		return persistErr("create application", err)
	}
	return nil
}

func (r *GormRepository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, persistErr("get application", err)
	}
	return &app, nil
}

func (r *GormRepository) HasApplication(ctx context.Context, professionalID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("professional_id = ? AND project_id = ?", professionalID, projectID).
		Count(&count).Error
	if err != nil {
		return false, persistErr("check duplicate application", err)
	}
	return count > 0, nil
}

func (r *GormRepository) UpdateApplication(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		return persistErr("update application", err)
	}
	return nil
}

func (r *GormRepository) ListApplications(ctx context.Context, filter lifecycle.ApplicationFilter, page lifecycle.Page) ([]models.Application, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Application{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistErr("count applications", err)
	}

	sortField := page.Sort
	switch sortField {
	case "created_at", "updated_at", "priority_score", "status":
	default:
		sortField = "priority_score"
	}
	order := page.Order
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	var apps []models.Application
	err := query.Order(sortField + " " + order).
		Offset((page.Number - 1) * page.Size).
		Limit(page.Size).
		Find(&apps).Error
	if err != nil {
		return nil, 0, persistErr("list applications", err)
	}
	return apps, total, nil
}

func (r *GormRepository) CountApplicationsByStatus(ctx context.Context, filter lifecycle.ApplicationFilter) (map[models.ApplicationStatus]int64, error) {
	// The summary covers the whole scope regardless of any status filter.
	filter.Status = nil

	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Application{}), filter).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, persistErr("summarize applications", err)
	}

	summary := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		summary[row.Status] = row.Count
	}
	return summary, nil
}

func (r *GormRepository) UpdatePriorityScore(ctx context.Context, id uuid.UUID, score float64) error {
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		UpdateColumn("priority_score", score).Error
	if err != nil {
		return persistErr("update priority score", err)
	}
	return nil
}

func (r *GormRepository) ExpireApplications(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("status IN ? AND created_at < ?", openStatuses(), before).
		Update("status", models.ApplicationStatusExpired)
	if res.Error != nil {
		return 0, persistErr("expire applications", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, persistErr("get project", err)
	}
	return &project, nil
}

func (r *GormRepository) GetProfessionalProfile(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	var profile models.ProfessionalProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, persistErr("get professional profile", err)
	}
	return &profile, nil
}

func (r *GormRepository) ClaimProject(ctx context.Context, projectID, professionalID uuid.UUID, finalAmount *float64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ? AND assigned_professional_id IS NULL", projectID, models.ProjectStatusOpen).
		Updates(map[string]interface{}{
			"status":                   models.ProjectStatusAssigned,
			"assigned_professional_id": professionalID,
			"final_amount":             finalAmount,
			"assigned_at":              now,
		})
	if res.Error != nil {
		return false, persistErr("claim project", res.Error)
	}
	if res.RowsAffected != 1 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Model(&models.ProfessionalProfile{}).
		Where("user_id = ?", professionalID).
		UpdateColumn("assigned_projects", gorm.Expr("assigned_projects + 1")).Error
	if err != nil {
		return false, persistErr("update assigned count", err)
	}
	return true, nil
}

func (r *GormRepository) AcceptApplication(ctx context.Context, id, reviewerID uuid.UUID, finalAmount *float64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, openStatuses()).
		Updates(map[string]interface{}{
			"status":      models.ApplicationStatusAccepted,
			"reviewed_at": now,
			"reviewed_by": reviewerID,
		})
	if res.Error != nil {
		return false, persistErr("accept application", res.Error)
	}
	if res.RowsAffected != 1 {
		return false, nil
	}

	if finalAmount != nil {
		patch, _ := json.Marshal(map[string]interface{}{"final_rate": *finalAmount})
		err := r.db.WithContext(ctx).Model(&models.Application{}).
			Where("id = ?", id).
			Update("metadata", gorm.Expr("COALESCE(metadata, '{}'::jsonb) || ?::jsonb", string(patch))).Error
		if err != nil {
			return false, persistErr("record final rate", err)
		}
	}
	return true, nil
}

func (r *GormRepository) RejectSiblings(ctx context.Context, projectID, winnerID, reviewerID uuid.UUID, reason string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("project_id = ? AND id != ? AND status IN ?", projectID, winnerID, openStatuses()).
		Updates(map[string]interface{}{
			"status":           models.ApplicationStatusRejected,
			"rejection_reason": reason,
			"reviewed_at":      now,
			"reviewed_by":      reviewerID,
		})
	if res.Error != nil {
		return 0, persistErr("reject sibling applications", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) Atomically(ctx context.Context, fn func(lifecycle.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) applyFilter(query *gorm.DB, filter lifecycle.ApplicationFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.ProfessionalID != nil {
		query = query.Where("professional_id = ?", *filter.ProfessionalID)
	}
	if filter.ClientID != nil {
		query = query.Where("project_id IN (SELECT id FROM projects WHERE client_id = ?)", *filter.ClientID)
	}
	return query
}

func openStatuses() []models.ApplicationStatus {
	return []models.ApplicationStatus{
		models.ApplicationStatusPending,
		models.ApplicationStatusUnderReview,
	}
}

func persistErr(op string, err error) error {
	return &lifecycle.PersistenceError{Op: op, Err: err}
}
