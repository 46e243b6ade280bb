package repository

import "github.com/projeto-integrador-integra/integra-backend/internal/models"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func NewPage[T any](items []T, total int64, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// Pagination is embedded in every filter.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) slice bounds of the page within total items.
func (p Pagination) Window(total int) (int, int) {
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

type ProjectFilter struct {
	Pagination
	Status         models.ProjectStatus
	ApprovalStatus models.ApprovalStatus
	Title          string
	CreatedBy      string
}

// ExploreFilter narrows the explorable listing to projects seeking a role.
type ExploreFilter struct {
	ProjectFilter
	NeedsMentors *bool
	NeedsDevs    *bool
}

type UserFilter struct {
	Pagination
	Role           models.UserRole
	ApprovalStatus models.ApprovalStatus
	Name           string
}

// UserSummary aggregates a user's activity.
type UserSummary struct {
	UserID               string `json:"user_id"`
	OwnedProjects        int64  `json:"owned_projects"`
	ActiveOwnedProjects  int64  `json:"active_owned_projects"`
	ActiveParticipations int64  `json:"active_participations"`
	CompletedProjects    int64  `json:"completed_projects"`
	FeedbacksGiven       int64  `json:"feedbacks_given"`
}

// ProjectStats feeds the project gauges.
type ProjectStats struct {
	ByStatus             map[models.ProjectStatus]int64
	PendingApproval      int64
	// ActiveParticipations counts the same rows as the per-user cap:
	// participations not left, in projects whose status is active.
	ActiveParticipations int64
}
