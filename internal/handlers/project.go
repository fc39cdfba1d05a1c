// internal/handlers/project.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workbridge/workbridge-backend/internal/models"
	"github.com/workbridge/workbridge-backend/internal/services"
	"github.com/workbridge/workbridge-backend/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	paymentService *services.PaymentService
}

func NewProjectHandler(projectService *services.ProjectService, paymentService *services.PaymentService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		paymentService: paymentService,
	}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	project, err := h.projectService.CreateProject(clientID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"project": project})
}

// POST /projects/:id/publish
func (h *ProjectHandler) Publish(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.projectService.PublishProject(projectID, clientID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"project": project})
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.projectService.GetProject(projectID)
	if err != nil {
		utils.NotFoundResponse(c, "Project")
		return
	}

	utils.SuccessResponse(c, gin.H{"project": project})
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	params := services.ProjectSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Category:         c.Query("category"),
		Search:           c.Query("search"),
	}

	if raw := c.Query("status"); raw != "" {
		status := models.ProjectStatus(raw)
		params.Status = &status
	}
	if raw := c.Query("client_id"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid client ID", nil)
			return
		}
		params.ClientID = &clientID
	}

	projects, total, err := h.projectService.SearchProjects(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(projects, total, params.PaginationParams))
}

// POST /projects/:id/complete
func (h *ProjectHandler) Complete(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	var req services.CompleteProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	project, err := h.projectService.CompleteProject(projectID, clientID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"project": project})
}

// POST /projects/:id/fund
func (h *ProjectHandler) FundEscrow(c *gin.Context) {
	clientID, ok := clientFromContext(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	intent, err := h.paymentService.CreateEscrowIntent(projectID, clientID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"escrow": intent})
}

func clientFromContext(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}
