package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

type UserService struct {
	store    repository.Store
	notifier Notifier
}

func NewUserService(store repository.Store, notifier Notifier) *UserService {
	return &UserService{store: store, notifier: notifier}
}

type RegisterUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Description string `json:"description"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Role           *string `json:"role"`
	ApprovalStatus *string `json:"approval_status"`
}

type UserListRequest struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Role           string `form:"role" binding:"omitempty,oneof=admin company dev mentor"`
	ApprovalStatus string `form:"approval_status" binding:"omitempty,oneof=pending approved rejected suspended"`
	Name           string `form:"name"`
}

func (r *UserListRequest) Filter() repository.UserFilter {
	return repository.UserFilter{
		Pagination:     repository.Pagination{Page: r.Page, Limit: r.Limit},
		Role:           models.UserRole(r.Role),
		ApprovalStatus: models.ApprovalStatus(r.ApprovalStatus),
		Name:           r.Name,
	}
}

// Register creates a pending user bound to the authenticated identity.
func (s *UserService) Register(ctx context.Context, identity models.Identity, req *RegisterUserRequest) (*models.User, error) {
	if identity.Subject == "" || identity.Email == "" {
		return nil, ErrUserNotAuthenticated
	}

	existing, err := s.store.Users().GetByEmailOrSub(ctx, identity.Email, identity.Subject)
	switch {
	case err == nil && existing != nil:
		return nil, ErrUserAlreadyExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user, err := models.NewUser(models.UserDraft{
		Sub:         identity.Subject,
		Email:       identity.Email,
		Name:        req.Name,
		Role:        models.UserRole(req.Role),
		Description: req.Description,
	})
	if err != nil {
		return nil, asValidation(err)
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("[User] Registered")
	return user, nil
}

// Update edits a user. Non-admins may only edit themselves and cannot change
// role or approval status. Approving a user sends the welcome email.
func (s *UserService) Update(ctx context.Context, editor models.Principal, userID string, req *UpdateUserRequest) (*models.User, error) {
	patch := models.UserPatch{Name: req.Name, Description: req.Description}
	if editor.IsAdmin() {
		if req.Role != nil {
			role := models.UserRole(*req.Role)
			patch.Role = &role
		}
		if req.ApprovalStatus != nil {
			status := models.ApprovalStatus(*req.ApprovalStatus)
			patch.ApprovalStatus = &status
		}
	} else if editor.ID != userID {
		return nil, ErrUserNotAuthorized
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasApproved := user.IsApproved()
	if err := user.Apply(patch); err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !wasApproved && user.IsApproved() {
		logger.Ctx(ctx).Info().Str("user_id", user.ID).Msg("[User] Approved")
		s.notifier.NotifyWelcome(ctx, user)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.lookup(s.store.Users().GetByID(ctx, id))
}

func (s *UserService) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.lookup(s.store.Users().GetBySub(ctx, sub))
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) (*repository.Page[models.User], error) {
	return s.store.Users().FindAllWithFilters(ctx, filter)
}

// EnsureAdmin creates the configured admin account once. It is a no-op when
// no admin identity is configured or the account already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg *config.AdminConfig) error {
	if cfg.Email == "" || cfg.Sub == "" {
		return nil
	}

	_, err := s.store.Users().GetByEmailOrSub(ctx, cfg.Email, cfg.Sub)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	name := cfg.Name
	if name == "" {
		name = "Integra Admin"
	}
	admin := &models.User{
		ID:             uuid.NewString(),
		Sub:            cfg.Sub,
		Email:          cfg.Email,
		Name:           name,
		Role:           models.RoleAdmin,
		ApprovalStatus: models.ApprovalApproved,
	}
	if err := s.store.Users().Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	logger.Info().Str("email", cfg.Email).Msg("[User] Admin account seeded")
	return nil
}

func (s *UserService) lookup(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
