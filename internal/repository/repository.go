// Package repository defines the persistence ports used by the services.
// Implementations live in gormstore (SQL via gorm) and memory (tests, local runs).
package repository

import (
	"context"
	"errors"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrNoRowsAffected = errors.New("no rows affected")
)

// Store groups the repositories and runs units of work atomically.
type Store interface {
	Projects() ProjectRepository
	Users() UserRepository
	Participants() ParticipantRepository

	// Transaction runs fn with a Store bound to a single transaction. Any
	// error returned by fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	// GetByID loads the project with its active members.
	GetByID(ctx context.Context, id string) (*models.Project, error)
	// GetByIDForUpdate is GetByID holding a row lock until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter ProjectFilter) (*Page[models.Project], error)
	ListExplorable(ctx context.Context, userID string, filter ExploreFilter) (*Page[models.Project], error)
	ListMyProjects(ctx context.Context, userID string, filter ProjectFilter) (*Page[models.Project], error)
	// FindSimilar returns the creator's projects whose name contains title, case-insensitively.
	FindSimilar(ctx context.Context, creatorID, title string) ([]models.Project, error)
	CountActiveOwned(ctx context.Context, creatorID string) (int64, error)
	// ApplyToProject inserts a participation. ErrNoRowsAffected when nothing was written.
	ApplyToProject(ctx context.Context, participation *models.Participation) error
	// LeaveProject soft-deletes the active participation. ErrNotFound when none exists.
	LeaveProject(ctx context.Context, projectID, userID string) error
	// SubmitFeedback inserts feedback. ErrDuplicate when the user already reviewed the project.
	SubmitFeedback(ctx context.Context, feedback *models.Feedback) error
	GetProjectFeedbacks(ctx context.Context, projectID string) ([]models.Feedback, error)
	UserSummary(ctx context.Context, userID string) (*UserSummary, error)
	Stats(ctx context.Context) (*ProjectStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySub(ctx context.Context, sub string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByEmailOrSub returns any user matching either value.
	GetByEmailOrSub(ctx context.Context, email, sub string) (*models.User, error)
	FindAllWithFilters(ctx context.Context, filter UserFilter) (*Page[models.User], error)
}

type ParticipantRepository interface {
	// Create returns ErrDuplicate when the user already holds an active
	// participation in the project.
	Create(ctx context.Context, participation *models.Participation) error
	GetActive(ctx context.Context, projectID, userID string) (*models.Participation, error)
	// HasParticipated includes participations the user has since left.
	HasParticipated(ctx context.Context, projectID, userID string) (bool, error)
	// CountActiveByUser counts active participations in projects whose status is active.
	CountActiveByUser(ctx context.Context, userID string) (int64, error)
}
