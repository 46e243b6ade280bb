package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/middleware"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository/memory"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	users  *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	queue := services.NewSyncQueue()
	notifier := services.NewNotificationService(queue)
	projects := services.NewProjectService(store, notifier, &config.ProjectConfig{})
	users := services.NewUserService(store, notifier)
	require.NoError(t, users.EnsureAdmin(context.Background(), &config.AdminConfig{Email: "admin@integra.dev", Sub: "admin"}))

	ph := NewProjectHandler(projects)
	uh := NewUserHandler(users, projects)

	r := gin.New()
	r.GET("/health", NewHealthHandler(store, queue).CheckHealth)

	api := r.Group("/api", middleware.Authenticate(true))
	api.POST("/users", uh.Register)
	member := api.Group("", middleware.AttachPrincipal(users))
	member.GET("/users/me", uh.Me)
	approved := member.Group("", middleware.RequireAccess())
	approved.PATCH("/users/:id", uh.Update)
	approved.GET("/users/:id/summary", uh.Summary)
	approved.GET("/projects", ph.List)
	approved.GET("/projects/mine", ph.Mine)
	approved.GET("/projects/:id", ph.GetByID)
	approved.PATCH("/projects/:id", ph.Update)
	approved.DELETE("/projects/:id/participation", ph.Leave)
	approved.POST("/projects/:id/feedbacks", ph.SubmitFeedback)
	approved.GET("/projects/:id/feedbacks", ph.Feedbacks)
	member.POST("/projects", middleware.RequireAccess(models.RoleCompany), ph.Create)
	member.GET("/projects/explore", middleware.RequireAccess(models.RoleDev, models.RoleMentor), ph.Explore)
	member.POST("/projects/:id/apply", middleware.RequireAccess(models.RoleDev, models.RoleMentor), ph.Apply)
	member.GET("/users", middleware.RequireAccess(models.RoleAdmin), uh.List)
	member.PATCH("/projects/:id/approval", middleware.RequireAccess(models.RoleAdmin), ph.ChangeApproval)

	return &testServer{router: r, users: users}
}

func (s *testServer) do(t *testing.T, sub, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set(middleware.HeaderUserSub, sub)
		req.Header.Set(middleware.HeaderUserEmail, sub+"@integra.dev")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// signUp registers sub with role and has the admin approve the account.
func (s *testServer) signUp(t *testing.T, sub, role string) string {
	t.Helper()
	code, env := s.do(t, sub, "POST", "/api/users", gin.H{"name": sub, "role": role})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	code, env = s.do(t, "admin", "PATCH", "/api/users/"+user.ID, gin.H{"approval_status": "approved"})
	require.Equal(t, http.StatusOK, code, env.Message)
	return user.ID
}

func (s *testServer) createApprovedProject(t *testing.T, companySub, name string, body gin.H) string {
	t.Helper()
	body["name"] = name
	body["description"] = "Project created through the HTTP API."
	code, env := s.do(t, companySub, "POST", "/api/projects", body)
	require.Equal(t, http.StatusCreated, code, env.Message)

	var project models.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	code, env = s.do(t, "admin", "PATCH", "/api/projects/"+project.ID+"/approval", gin.H{"approval_status": "approved"})
	require.Equal(t, http.StatusOK, code, env.Message)
	return project.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queue_mode":"sync"`)
}

func TestUserRegistrationFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, "", "POST", "/api/users", gin.H{"name": "Ana", "role": "dev"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "USER_NOT_AUTHENTICATED", env.Code)

	code, env = s.do(t, "ana", "GET", "/api/users/me", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "USER_NOT_FOUND", env.Code)

	code, env = s.do(t, "ana", "POST", "/api/users", gin.H{"name": "Ana", "role": "dev"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "CREATED", env.Code)

	code, _ = s.do(t, "ana", "GET", "/api/users/me", nil)
	assert.Equal(t, http.StatusOK, code, "pending users can read their own account")

	code, env = s.do(t, "ana", "GET", "/api/projects", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "USER_NOT_APPROVED", env.Code)

	code, env = s.do(t, "bia", "POST", "/api/users", gin.H{"name": "Bia"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "acme", "company")
	s.signUp(t, "mentor", "mentor")
	s.signUp(t, "dev1", "dev")
	s.signUp(t, "dev2", "dev")

	projectID := s.createApprovedProject(t, "acme", "Integra Portal", gin.H{})

	code, env := s.do(t, "dev1", "POST", "/api/projects", gin.H{"name": "Nope", "description": "Devs cannot create projects."})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "USER_ROLE_NOT_AUTHORIZED", env.Code)

	code, env = s.do(t, "acme", "POST", "/api/projects/"+projectID+"/apply", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "USER_ROLE_NOT_AUTHORIZED", env.Code)

	code, _ = s.do(t, "mentor", "POST", "/api/projects/"+projectID+"/apply", gin.H{"message": "Happy to help"})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, "dev1", "POST", "/api/projects/"+projectID+"/apply", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, "dev1", "POST", "/api/projects/"+projectID+"/apply", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_PARTICIPATING", env.Code)

	code, env = s.do(t, "dev2", "POST", "/api/projects/"+projectID+"/apply", nil)
	require.Equal(t, http.StatusOK, code)
	var project models.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.False(t, project.NeedsDevs)
	assert.False(t, project.NeedsMentors)
	assert.Len(t, project.Members, 3)

	code, env = s.do(t, "dev1", "POST", "/api/projects/"+projectID+"/feedbacks", gin.H{"comment": "Great experience overall.", "rating": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	code, _ = s.do(t, "dev1", "POST", "/api/projects/"+projectID+"/feedbacks", gin.H{"comment": "Great experience overall.", "rating": 5})
	require.Equal(t, http.StatusCreated, code)

	code, env = s.do(t, "dev1", "POST", "/api/projects/"+projectID+"/feedbacks", gin.H{"comment": "Great experience overall.", "rating": 5})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "FEEDBACK_ALREADY_SUBMITTED", env.Code)

	code, env = s.do(t, "dev1", "GET", "/api/projects/"+projectID+"/feedbacks", nil)
	require.Equal(t, http.StatusOK, code)
	var feedbacks []models.Feedback
	require.NoError(t, json.Unmarshal(env.Data, &feedbacks))
	assert.Len(t, feedbacks, 1)
}

func TestProjectListScoping(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "acme", "company")
	s.signUp(t, "globex", "company")
	s.signUp(t, "dev", "dev")

	s.createApprovedProject(t, "acme", "Acme Approved", gin.H{})
	code, _ := s.do(t, "globex", "POST", "/api/projects", gin.H{"name": "Globex Pending", "description": "Not yet approved by an admin."})
	require.Equal(t, http.StatusCreated, code)

	count := func(sub string) int {
		code, env := s.do(t, sub, "GET", "/api/projects", nil)
		require.Equal(t, http.StatusOK, code)
		var page struct {
			Items []models.Project `json:"items"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		return len(page.Items)
	}

	assert.Equal(t, 2, count("admin"))
	assert.Equal(t, 1, count("acme"))
	assert.Equal(t, 1, count("globex"), "companies see their own projects, approved or not")
	assert.Equal(t, 1, count("dev"), "developers only see approved projects")

	code, env := s.do(t, "dev", "GET", "/api/projects?limit=1000", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestUpdateProjectForbidden(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "acme", "company")
	s.signUp(t, "globex", "company")
	projectID := s.createApprovedProject(t, "acme", "Integra Portal", gin.H{})

	code, env := s.do(t, "globex", "PATCH", "/api/projects/"+projectID, gin.H{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	code, env = s.do(t, "acme", "GET", "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PROJECT_NOT_FOUND", env.Code)
}

func TestUserSummaryAccess(t *testing.T) {
	s := newTestServer(t)
	devID := s.signUp(t, "dev", "dev")
	s.signUp(t, "other", "dev")

	code, _ := s.do(t, "dev", "GET", "/api/users/"+devID+"/summary", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(t, "other", "GET", "/api/users/"+devID+"/summary", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "USER_NOT_AUTHORIZED", env.Code)

	code, _ = s.do(t, "admin", "GET", "/api/users/"+devID+"/summary", nil)
	assert.Equal(t, http.StatusOK, code)
}
