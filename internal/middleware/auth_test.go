package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/projeto-integrador-integra/integra-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-middleware-testing")
}

type stubResolver map[string]*models.User

func (r stubResolver) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	if u, ok := r[sub]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body.Code
}

func identityRouter(devHeaders bool) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(devHeaders))
	router.GET("/protected", func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(200, gin.H{"sub": identity.Subject, "email": identity.Email})
	})
	return router
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	identityRouter(true).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if code := decodeCode(t, w); code != "USER_NOT_AUTHENTICATED" {
		t.Errorf("expected code USER_NOT_AUTHENTICATED, got %q", code)
	}
}

func TestAuthenticate_InvalidFormat(t *testing.T) {
	router := identityRouter(false)
	testCases := []string{
		"InvalidToken",
		"Basic token123",
		"Bearer",
		"Bearer not.a.token",
	}

	for _, authHeader := range testCases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", authHeader)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestAuthenticate_BearerToken(t *testing.T) {
	token, err := utils.GenerateIdentityToken("sub-1", "ana@integra.dev", 1)
	if err != nil {
		t.Fatalf("GenerateIdentityToken() error = %v", err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	identityRouter(false).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["sub"] != "sub-1" || body["email"] != "ana@integra.dev" {
		t.Errorf("unexpected identity %v", body)
	}
}

func TestAuthenticate_DevHeaders(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set(HeaderUserSub, "sub-dev")
		req.Header.Set(HeaderUserEmail, "dev@integra.dev")
		identityRouter(enabled).ServeHTTP(w, req)

		want := http.StatusUnauthorized
		if enabled {
			want = http.StatusOK
		}
		if w.Code != want {
			t.Errorf("devHeaders=%v: expected status %d, got %d", enabled, want, w.Code)
		}
	}
}

func principalRouter(resolver PrincipalResolver, roles ...models.UserRole) *gin.Engine {
	router := gin.New()
	router.Use(Authenticate(true), AttachPrincipal(resolver), RequireAccess(roles...))
	router.GET("/protected", func(c *gin.Context) {
		principal, _ := GetPrincipal(c)
		c.JSON(200, gin.H{"id": principal.ID})
	})
	return router
}

func TestRequireAccess(t *testing.T) {
	resolver := stubResolver{
		"sub-dev":     {ID: "u1", Role: models.RoleDev, ApprovalStatus: models.ApprovalApproved},
		"sub-pending": {ID: "u2", Role: models.RoleDev, ApprovalStatus: models.ApprovalPending},
		"sub-company": {ID: "u3", Role: models.RoleCompany, ApprovalStatus: models.ApprovalApproved},
		"sub-admin":   {ID: "u4", Role: models.RoleAdmin, ApprovalStatus: models.ApprovalPending},
	}
	router := principalRouter(resolver, models.RoleDev, models.RoleMentor)

	tests := []struct {
		sub      string
		wantCode int
		wantErr  string
	}{
		{"sub-dev", http.StatusOK, ""},
		{"sub-pending", http.StatusForbidden, "USER_NOT_APPROVED"},
		{"sub-company", http.StatusForbidden, "USER_ROLE_NOT_AUTHORIZED"},
		{"sub-admin", http.StatusOK, ""},
		{"sub-unknown", http.StatusNotFound, "USER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.sub, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			req.Header.Set(HeaderUserSub, tt.sub)
			req.Header.Set(HeaderUserEmail, tt.sub+"@integra.dev")
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantErr != "" {
				if code := decodeCode(t, w); code != tt.wantErr {
					t.Errorf("expected code %q, got %q", tt.wantErr, code)
				}
			}
		})
	}
}

func TestRequireAccess_NoRolesAdmitsAnyApproved(t *testing.T) {
	resolver := stubResolver{
		"sub-company": {ID: "u3", Role: models.RoleCompany, ApprovalStatus: models.ApprovalApproved},
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set(HeaderUserSub, "sub-company")
	req.Header.Set(HeaderUserEmail, "company@integra.dev")
	principalRouter(resolver).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestGetPrincipal_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetPrincipal(c); ok {
		t.Error("GetPrincipal should report a missing principal")
	}
	if _, ok := GetIdentity(c); ok {
		t.Error("GetIdentity should report a missing identity")
	}
}
