package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/projeto-integrador-integra/integra-backend/internal/config"
	"github.com/projeto-integrador-integra/integra-backend/internal/metrics"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/projeto-integrador-integra/integra-backend/internal/tracing"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"github.com/projeto-integrador-integra/integra-backend/pkg/response"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = tracing.Tracer("integra/services")

// ProjectService owns the project lifecycle: registration, editing,
// applications, leaving, feedback and the listings.
type ProjectService struct {
	store              repository.Store
	notifier           Notifier
	maxProjectsPerUser int
}

func NewProjectService(store repository.Store, notifier Notifier, cfg *config.ProjectConfig) *ProjectService {
	limit := models.MaxProjectsPerUser
	if cfg != nil && cfg.MaxProjectsPerUser > 0 {
		limit = cfg.MaxProjectsPerUser
	}
	return &ProjectService{store: store, notifier: notifier, maxProjectsPerUser: limit}
}

type ProjectListRequest struct {
	Page           int    `form:"page" binding:"omitempty,min=1"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status         string `form:"status" binding:"omitempty,oneof=draft active closed cancelled"`
	ApprovalStatus string `form:"approval_status" binding:"omitempty,oneof=pending approved rejected"`
	Title          string `form:"title"`
	CreatedBy      string `form:"created_by"`
}

func (r *ProjectListRequest) Filter() repository.ProjectFilter {
	return repository.ProjectFilter{
		Pagination:     repository.Pagination{Page: r.Page, Limit: r.Limit},
		Status:         models.ProjectStatus(r.Status),
		ApprovalStatus: models.ApprovalStatus(r.ApprovalStatus),
		Title:          r.Title,
		CreatedBy:      r.CreatedBy,
	}
}

type CreateProjectRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Tags            []string `json:"tags"`
	NeedsMentors    *bool    `json:"needs_mentors"`
	NeedsDevs       *bool    `json:"needs_devs"`
	MaxParticipants *int     `json:"max_participants"`
}

func (r *CreateProjectRequest) draft(creatorID string) models.ProjectDraft {
	d := models.ProjectDraft{
		Name:            r.Name,
		Description:     r.Description,
		CreatorID:       creatorID,
		Tags:            r.Tags,
		NeedsMentors:    true,
		NeedsDevs:       true,
		MaxParticipants: models.DefaultMaxParticipants,
	}
	if r.NeedsMentors != nil {
		d.NeedsMentors = *r.NeedsMentors
	}
	if r.NeedsDevs != nil {
		d.NeedsDevs = *r.NeedsDevs
	}
	if r.MaxParticipants != nil {
		d.MaxParticipants = *r.MaxParticipants
	}
	return d
}

type UpdateProjectRequest struct {
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	Tags            *[]string `json:"tags"`
	MaxParticipants *int      `json:"max_participants"`
	Status          *string   `json:"status"`
	ApprovalStatus  *string   `json:"approval_status"`
}

func (r *UpdateProjectRequest) patch() models.ProjectPatch {
	p := models.ProjectPatch{
		Name:            r.Name,
		Description:     r.Description,
		Tags:            r.Tags,
		MaxParticipants: r.MaxParticipants,
	}
	if r.Status != nil {
		status := models.ProjectStatus(*r.Status)
		p.Status = &status
	}
	if r.ApprovalStatus != nil {
		approval := models.ApprovalStatus(*r.ApprovalStatus)
		p.ApprovalStatus = &approval
	}
	return p
}

type ApplyRequest struct {
	Message string `json:"message"`
}

type FeedbackRequest struct {
	Comment string `json:"comment" binding:"required"`
	Link    string `json:"link"`
	Rating  int    `json:"rating" binding:"required"`
}

type ChangeApprovalRequest struct {
	ApprovalStatus string `json:"approval_status" binding:"required,oneof=pending approved rejected"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active closed cancelled"`
}

// Register creates a project for creator. The name must not resemble another
// of the creator's projects and the creator must be below the active project cap.
func (s *ProjectService) Register(ctx context.Context, creator models.Principal, req *CreateProjectRequest) (*models.Project, error) {
	project, err := models.NewProject(req.draft(creator.ID))
	if err != nil {
		return nil, asValidation(err)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		similar, err := tx.Projects().FindSimilar(ctx, creator.ID, project.Name)
		if err != nil {
			return err
		}
		if len(similar) > 0 {
			return ErrProjectAlreadyExists
		}

		owned, err := tx.Projects().CountActiveOwned(ctx, creator.ID)
		if err != nil {
			return err
		}
		if owned >= int64(s.maxProjectsPerUser) {
			return ErrUserProjectLimitReached
		}

		if err := tx.Projects().Create(ctx, project); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrProjectAlreadyExists
			}
			logger.Ctx(ctx).Error().Err(err).Str("creator_id", creator.ID).Msg("[Project] Create failed")
			return ErrProjectCreationError
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("project_id", project.ID).Str("creator_id", creator.ID).Msg("[Project] Registered")
	return project, nil
}

// Update applies a partial edit. Only the creator or an admin may edit, and
// only admins may change the approval status.
func (s *ProjectService) Update(ctx context.Context, editor models.Principal, projectID string, req *UpdateProjectRequest) (*models.Project, error) {
	patch := req.patch()
	if !editor.IsAdmin() {
		patch.ApprovalStatus = nil
	}
	return s.mutate(ctx, editor, projectID, patch)
}

// ChangeApproval sets the project's approval status. Admin only.
func (s *ProjectService) ChangeApproval(ctx context.Context, editor models.Principal, projectID string, status models.ApprovalStatus) (*models.Project, error) {
	if !editor.IsAdmin() {
		return nil, ErrProjectForbidden
	}
	return s.mutate(ctx, editor, projectID, models.ProjectPatch{ApprovalStatus: &status})
}

// ChangeStatus moves the project through its lifecycle. Creator or admin.
func (s *ProjectService) ChangeStatus(ctx context.Context, editor models.Principal, projectID string, status models.ProjectStatus) (*models.Project, error) {
	return s.mutate(ctx, editor, projectID, models.ProjectPatch{Status: &status})
}

// mutate applies patch under the project row lock. Shrinking capacity can
// close the last open seat, in which case the edit forms the group and the
// members are notified just as when the last applicant is admitted.
func (s *ProjectService) mutate(ctx context.Context, editor models.Principal, projectID string, patch models.ProjectPatch) (*models.Project, error) {
	var (
		project     *models.Project
		groupFormed bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.lockProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !editor.IsAdmin() && p.CreatorID != editor.ID {
			return ErrProjectForbidden
		}
		wasComplete := p.IsGroupComplete()
		if err := p.Apply(patch); err != nil {
			return asValidation(err)
		}
		if err := tx.Projects().Update(ctx, p); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("project_id", projectID).Msg("[Project] Update failed")
			return ErrProjectUpdateError
		}
		project = p
		groupFormed = !wasComplete && p.IsGroupComplete() && len(p.Members) > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if groupFormed {
		logger.Ctx(ctx).Info().Str("project_id", project.ID).Msg("[Project] Group formed by capacity change")
		metrics.ObserveGroupFormed()
		s.notifier.NotifyGroupFormed(ctx, project)
	}
	return project, nil
}

// ApplyToProject admits applicant as a member. The whole check-and-insert runs
// under the project row lock, so concurrent applications cannot overfill it.
// When the admission completes the team, every member is notified once.
func (s *ProjectService) ApplyToProject(ctx context.Context, applicant models.Principal, projectID, message string) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "ProjectService.ApplyToProject")
	defer span.End()
	span.SetAttributes(
		attribute.String("project.id", projectID),
		attribute.String("user.role", string(applicant.Role)),
	)

	var (
		project     *models.Project
		groupFormed bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.lockProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if p.ApprovalStatus != models.ApprovalApproved {
			return ErrProjectNotAvailable
		}
		if p.Status != models.StatusActive {
			return ErrProjectNotActive
		}
		if p.HasMember(applicant.ID) {
			return ErrUserAlreadyParticipating
		}

		switch applicant.Role {
		case models.RoleMentor:
			if !p.NeedsMentors {
				return ErrProjectNoMentorsNeeded
			}
		case models.RoleDev:
			if !p.NeedsDevs {
				return ErrProjectNoDevsNeeded
			}
		default:
			return ErrRoleCannotApply
		}

		active, err := tx.Participants().CountActiveByUser(ctx, applicant.ID)
		if err != nil {
			return err
		}
		if active >= int64(s.maxProjectsPerUser) {
			return ErrUserProjectLimitReached
		}

		user, err := tx.Users().GetByID(ctx, applicant.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		participation, err := models.NewParticipation(user.ID, p.ID, message)
		if err != nil {
			return asValidation(err)
		}

		flagsChanged := p.Seat(user.Role)
		if err := tx.Projects().ApplyToProject(ctx, participation); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUserAlreadyParticipating
			}
			logger.Ctx(ctx).Error().Err(err).Str("project_id", p.ID).Msg("[Project] Participation insert failed")
			return ErrProjectApplicationError
		}
		p.AddMember(*user)

		if flagsChanged {
			if err := tx.Projects().Update(ctx, p); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("project_id", p.ID).Msg("[Project] Capacity update failed")
				return ErrProjectUpdateError
			}
		}

		project = p
		groupFormed = flagsChanged && p.IsGroupComplete()
		return nil
	})
	if err != nil {
		metrics.ObserveApplication(string(applicant.Role), errorCode(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.ObserveApplication(string(applicant.Role), "accepted")
	logger.Ctx(ctx).Info().
		Str("project_id", project.ID).
		Str("user_id", applicant.ID).
		Bool("group_formed", groupFormed).
		Msg("[Project] Application accepted")

	if groupFormed {
		metrics.ObserveGroupFormed()
		span.AddEvent("group formed")
		s.notifier.NotifyGroupFormed(ctx, project)
	}
	return project, nil
}

// LeaveProject removes the caller from the project. Needs flags are not
// reopened.
func (s *ProjectService) LeaveProject(ctx context.Context, member models.Principal, projectID string) (*models.Project, error) {
	var project *models.Project
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.lockProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if _, err := tx.Participants().GetActive(ctx, projectID, member.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotParticipating
			}
			return err
		}
		if err := tx.Projects().LeaveProject(ctx, projectID, member.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotParticipating
			}
			return err
		}
		p.RemoveMember(member.ID)
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// SubmitFeedback records the author's review and closes the project.
// Members who already left may still review.
func (s *ProjectService) SubmitFeedback(ctx context.Context, author models.Principal, projectID string, req *FeedbackRequest) (*models.Feedback, error) {
	ctx, span := tracer.Start(ctx, "ProjectService.SubmitFeedback")
	defer span.End()
	span.SetAttributes(attribute.String("project.id", projectID))

	feedback, err := models.NewFeedback(models.FeedbackDraft{
		ProjectID: projectID,
		UserID:    author.ID,
		Comment:   req.Comment,
		Link:      req.Link,
		Rating:    req.Rating,
	})
	if err != nil {
		return nil, asValidation(err)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.lockProject(ctx, tx, projectID)
		if err != nil {
			return err
		}

		participated, err := tx.Participants().HasParticipated(ctx, projectID, author.ID)
		if err != nil {
			return err
		}
		if !participated {
			return ErrUserNotParticipating
		}

		if err := tx.Projects().SubmitFeedback(ctx, feedback); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrFeedbackAlreadySubmitted
			}
			logger.Ctx(ctx).Error().Err(err).Str("project_id", projectID).Msg("[Project] Feedback insert failed")
			return ErrFeedbackSubmissionFailed
		}

		if p.Status != models.StatusClosed {
			p.Status = models.StatusClosed
			if err := tx.Projects().Update(ctx, p); err != nil {
				logger.Ctx(ctx).Error().Err(err).Str("project_id", projectID).Msg("[Project] Close after feedback failed")
				return ErrProjectUpdateError
			}
		}

		if user, err := tx.Users().GetByID(ctx, author.ID); err == nil {
			feedback.User = user.Public()
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return feedback, nil
}

func (s *ProjectService) GetByID(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) GetProjectFeedbacks(ctx context.Context, projectID string) ([]models.Feedback, error) {
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.Projects().GetProjectFeedbacks(ctx, projectID)
}

func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	return s.store.Projects().List(ctx, filter)
}

// ListExplorable lists approved active projects the caller can still join,
// narrowed to those seeking the caller's role.
func (s *ProjectService) ListExplorable(ctx context.Context, caller models.Principal, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	explore := repository.ExploreFilter{ProjectFilter: filter}
	seeking := true
	switch caller.Role {
	case models.RoleDev:
		explore.NeedsDevs = &seeking
	case models.RoleMentor:
		explore.NeedsMentors = &seeking
	}
	return s.store.Projects().ListExplorable(ctx, caller.ID, explore)
}

func (s *ProjectService) ListMyProjects(ctx context.Context, userID string, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	return s.store.Projects().ListMyProjects(ctx, userID, filter)
}

func (s *ProjectService) UserSummary(ctx context.Context, userID string) (*repository.UserSummary, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.store.Projects().UserSummary(ctx, userID)
}

func (s *ProjectService) lockProject(ctx context.Context, tx repository.Store, projectID string) (*models.Project, error) {
	p, err := tx.Projects().GetByIDForUpdate(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	return p, nil
}

func errorCode(err error) string {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return response.CodeInternalServerError
}
