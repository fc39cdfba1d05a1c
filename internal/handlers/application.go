// internal/handlers/application.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workbridge/workbridge-backend/internal/lifecycle"
	"github.com/workbridge/workbridge-backend/internal/models"
	"github.com/workbridge/workbridge-backend/internal/services"
	"github.com/workbridge/workbridge-backend/internal/utils"
)

type ApplicationHandler struct {
	coordinator    *lifecycle.Coordinator
	storageService *services.StorageService
}

func NewApplicationHandler(coordinator *lifecycle.Coordinator, storageService *services.StorageService) *ApplicationHandler {
	return &ApplicationHandler{
		coordinator:    coordinator,
		storageService: storageService,
	}
}

type submitApplicationRequest struct {
	CoverLetter          string                 `json:"cover_letter" validate:"required"`
	ProposedRate         *float64               `json:"proposed_rate,omitempty"`
	ProposedTimelineDays *int                   `json:"proposed_timeline_days,omitempty"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
}

type evaluateApplicationRequest struct {
	Score    *float64 `json:"score,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
}

type approveApplicationRequest struct {
	FinalAmount *float64 `json:"final_amount,omitempty"`
	Message     string   `json:"message,omitempty"`
}

type rejectApplicationRequest struct {
	Reason   string `json:"reason" validate:"required"`
	Feedback string `json:"feedback,omitempty"`
}

type withdrawApplicationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// POST /projects/:id/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	app, err := h.coordinator.Submit(c.Request.Context(), actor, projectID, lifecycle.SubmitInput{
		CoverLetter:          req.CoverLetter,
		ProposedRate:         req.ProposedRate,
		ProposedTimelineDays: req.ProposedTimelineDays,
		Metadata:             req.Metadata,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"application": app})
}

// GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filter := lifecycle.ApplicationFilter{}

	if raw := c.Query("status"); raw != "" {
		status := models.ApplicationStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("project_id"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid project ID", nil)
			return
		}
		filter.ProjectID = &projectID
	}

	result, err := h.coordinator.List(c.Request.Context(), actor, filter, lifecycle.Page{
		Number: params.Page,
		Size:   params.Limit,
		Sort:   params.Sort,
		Order:  params.Order,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, utils.PaginationResult{
		Page:       result.PageInfo.Page,
		Limit:      result.PageInfo.Limit,
		Total:      result.PageInfo.Total,
		TotalPages: result.PageInfo.TotalPages,
	})
	utils.SuccessResponseWithMeta(c, result.Items, gin.H{
		"pagination":     result.PageInfo,
		"status_summary": result.StatusSummary,
	})
}

// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	app, err := h.coordinator.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// POST /applications/:id/evaluate
func (h *ApplicationHandler) Evaluate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	var req evaluateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	app, err := h.coordinator.Evaluate(c.Request.Context(), actor, id, lifecycle.EvaluateInput{
		Score:    req.Score,
		Feedback: req.Feedback,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// POST /applications/:id/approve
func (h *ApplicationHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	var req approveApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	app, err := h.coordinator.Approve(c.Request.Context(), actor, id, lifecycle.ApproveInput{
		FinalAmount: req.FinalAmount,
		Message:     req.Message,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// POST /applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	var req rejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	app, err := h.coordinator.Reject(c.Request.Context(), actor, id, req.Reason, req.Feedback)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// POST /applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	// An empty body is a withdrawal without a stated reason.
	var req withdrawApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	app, err := h.coordinator.Withdraw(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"application": app})
}

// POST /applications/:id/recompute-score
func (h *ApplicationHandler) RecomputeScore(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	score, err := h.coordinator.RecomputeScore(c.Request.Context(), actor, id)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application_id": id,
		"priority_score": score,
	})
}

// POST /applications/:id/attachments
func (h *ApplicationHandler) UploadAttachment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID", nil)
		return
	}

	// Only a party to the application may attach files to it.
	if _, err := h.coordinator.Get(c.Request.Context(), actor, id); err != nil {
		respondLifecycleError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.UploadOptions{
		Folder:       "applications/" + id.String(),
		MaxSize:      10 * 1024 * 1024, // 10MB
		AllowedTypes: []string{".pdf", ".doc", ".docx", ".png", ".jpg", ".jpeg", ".zip"},
	})
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"attachment": result})
}

func actorFromContext(c *gin.Context) (lifecycle.Actor, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return lifecycle.Actor{}, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return lifecycle.Actor{}, false
	}

	role, _ := utils.GetUserRoleFromContext(c)
	return lifecycle.Actor{ID: userID, Role: models.UserRole(role)}, true
}

// respondLifecycleError translates the coordinator's error taxonomy into HTTP
// status codes. Persistence failures are logged server-side and surface as an
// opaque 500.
func respondLifecycleError(c *gin.Context, err error) {
	var pe *lifecycle.PersistenceError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		utils.NotFoundResponse(c, "Application")
	case errors.Is(err, lifecycle.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, lifecycle.ErrInvalidStateTransition):
		utils.UnprocessableResponse(c, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, lifecycle.ErrConflictAssignment):
		utils.ConflictResponse(c, "Project has already been assigned")
	case errors.Is(err, lifecycle.ErrDuplicateApplication):
		utils.ConflictResponse(c, "You have already applied to this project")
	case errors.Is(err, lifecycle.ErrProjectNotOpen):
		utils.UnprocessableResponse(c, "PROJECT_NOT_OPEN", "Project is not accepting applications")
	case errors.Is(err, lifecycle.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.As(err, &pe):
		logrus.WithError(err).Error("Persistence failure")
		utils.InternalErrorResponse(c, "")
	default:
		logrus.WithError(err).Error("Unexpected lifecycle error")
		utils.InternalErrorResponse(c, "")
	}
}
