package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/services"
	"github.com/projeto-integrador-integra/integra-backend/internal/utils"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
)

const (
	ContextIdentity  = "identity"
	ContextPrincipal = "principal"

	HeaderUserSub   = "X-User-Sub"
	HeaderUserEmail = "X-User-Email"
)

// PrincipalResolver loads the registered user behind an identity subject.
type PrincipalResolver interface {
	GetBySub(ctx context.Context, sub string) (*models.User, error)
}

// Authenticate resolves the caller's identity from a bearer token. With
// devHeaders on, X-User-Sub and X-User-Email are accepted instead.
func Authenticate(devHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromRequest(c, devHeaders)
		if !ok {
			response.Abort(c, services.ErrUserNotAuthenticated)
			return
		}
		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

func identityFromRequest(c *gin.Context, devHeaders bool) (models.Identity, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return models.Identity{}, false
		}
		claims, err := utils.ParseIdentityToken(parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("[Auth] Rejected token")
			return models.Identity{}, false
		}
		return models.Identity{Subject: claims.Subject, Email: claims.Email}, true
	}

	if devHeaders {
		sub, email := c.GetHeader(HeaderUserSub), c.GetHeader(HeaderUserEmail)
		if sub != "" && email != "" {
			return models.Identity{Subject: sub, Email: email}, true
		}
	}
	return models.Identity{}, false
}

// AttachPrincipal looks up the registered user for the authenticated identity
// and stores the resulting principal on the request.
func AttachPrincipal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			response.Abort(c, services.ErrUserNotAuthenticated)
			return
		}

		user, err := resolver.GetBySub(c.Request.Context(), identity.Subject)
		if err != nil {
			if !errors.Is(err, services.ErrUserNotFound) {
				logger.Ctx(c.Request.Context()).Error().Err(err).Str("sub", identity.Subject).Msg("[Auth] Principal lookup failed")
			}
			response.Abort(c, err)
			return
		}

		c.Set(ContextPrincipal, user.Principal())
		c.Next()
	}
}

// RequireAccess admits approved principals whose role is listed. Admins
// always pass. An empty list admits any approved principal.
func RequireAccess(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Abort(c, services.ErrUserNotAuthenticated)
			return
		}
		if principal.IsAdmin() {
			c.Next()
			return
		}
		if principal.ApprovalStatus != models.ApprovalApproved {
			response.Abort(c, services.ErrUserNotApproved)
			return
		}
		if len(roles) > 0 && !principal.HasRole(roles...) {
			response.Abort(c, services.ErrUserRoleNotAllowed)
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (models.Identity, bool) {
	if v, exists := c.Get(ContextIdentity); exists {
		identity, ok := v.(models.Identity)
		return identity, ok
	}
	return models.Identity{}, false
}

func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	if v, exists := c.Get(ContextPrincipal); exists {
		principal, ok := v.(models.Principal)
		return principal, ok
	}
	return models.Principal{}, false
}
