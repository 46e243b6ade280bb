package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/middleware"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
)

type UserHandler struct {
	users    *services.UserService
	projects *services.ProjectService
}

func NewUserHandler(users *services.UserService, projects *services.ProjectService) *UserHandler {
	return &UserHandler{users: users, projects: projects}
}

// Register creates the caller's account from the authenticated identity.
// POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	identity, _ := middleware.GetIdentity(c)
	user, err := h.users.Register(c.Request.Context(), identity, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), mustPrincipal(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	page, err := h.users.List(c.Request.Context(), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// GET /api/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// PATCH /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	user, err := h.users.Update(c.Request.Context(), mustPrincipal(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Summary reports a user's activity counts. Self or admin.
// GET /api/users/:id/summary
func (h *UserHandler) Summary(c *gin.Context) {
	principal := mustPrincipal(c)
	userID := c.Param("id")
	if !principal.IsAdmin() && principal.ID != userID {
		response.Error(c, services.ErrUserNotAuthorized)
		return
	}

	summary, err := h.projects.UserSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}
