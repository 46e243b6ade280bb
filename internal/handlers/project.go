package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/middleware"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List returns paginated projects. Companies only see their own projects and
// developers and mentors only see approved ones.
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	principal := mustPrincipal(c)
	filter := req.Filter()
	switch {
	case principal.IsAdmin():
	case principal.Role == models.RoleCompany:
		filter.CreatedBy = principal.ID
	default:
		filter.ApprovalStatus = models.ApprovalApproved
	}

	page, err := h.projects.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// Explore lists the projects the caller can still apply to.
// GET /api/projects/explore
func (h *ProjectHandler) Explore(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	page, err := h.projects.ListExplorable(c.Request.Context(), mustPrincipal(c), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// Mine lists the projects the caller has joined.
// GET /api/projects/mine
func (h *ProjectHandler) Mine(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	page, err := h.projects.ListMyProjects(c.Request.Context(), mustPrincipal(c).ID, req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Create registers a project owned by the caller.
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	project, err := h.projects.Register(c.Request.Context(), mustPrincipal(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	project, err := h.projects.Update(c.Request.Context(), mustPrincipal(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// PATCH /api/projects/:id/approval
func (h *ProjectHandler) ChangeApproval(c *gin.Context) {
	var req services.ChangeApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	project, err := h.projects.ChangeApproval(c.Request.Context(), mustPrincipal(c), c.Param("id"), models.ApprovalStatus(req.ApprovalStatus))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// PATCH /api/projects/:id/status
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	var req services.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	project, err := h.projects.ChangeStatus(c.Request.Context(), mustPrincipal(c), c.Param("id"), models.ProjectStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Apply joins the caller to the project. The body is optional.
// POST /api/projects/:id/apply
func (h *ProjectHandler) Apply(c *gin.Context) {
	var req services.ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationFailed(c, err.Error())
			return
		}
	}

	project, err := h.projects.ApplyToProject(c.Request.Context(), mustPrincipal(c), c.Param("id"), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// DELETE /api/projects/:id/participation
func (h *ProjectHandler) Leave(c *gin.Context) {
	project, err := h.projects.LeaveProject(c.Request.Context(), mustPrincipal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// POST /api/projects/:id/feedbacks
func (h *ProjectHandler) SubmitFeedback(c *gin.Context) {
	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	feedback, err := h.projects.SubmitFeedback(c.Request.Context(), mustPrincipal(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// GET /api/projects/:id/feedbacks
func (h *ProjectHandler) Feedbacks(c *gin.Context) {
	feedbacks, err := h.projects.GetProjectFeedbacks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedbacks)
}

// mustPrincipal reads the principal attached by middleware.AttachPrincipal.
// Routes using it are always mounted behind that middleware.
func mustPrincipal(c *gin.Context) models.Principal {
	principal, _ := middleware.GetPrincipal(c)
	return principal
}
