package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"gorm.io/gorm"
)

type projectRepository struct {
	s *Store
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	defer r.s.lock()()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if _, exists := r.s.state.projects[project.ID]; exists {
		return repository.ErrDuplicate
	}
	project.CreatedAt = now()
	project.UpdatedAt = project.CreatedAt
	stored := *project
	stored.Members = nil
	r.s.state.projects[project.ID] = stored
	r.s.state.projectOrder = append(r.s.state.projectOrder, project.ID)
	if project.Members == nil {
		project.Members = []models.User{}
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	defer r.s.lock()()
	existing, ok := r.s.state.projects[project.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = project.Name
	existing.Description = project.Description
	existing.Tags = append(project.Tags[:0:0], project.Tags...)
	existing.NeedsMentors = project.NeedsMentors
	existing.NeedsDevs = project.NeedsDevs
	existing.MaxParticipants = project.MaxParticipants
	existing.Status = project.Status
	existing.ApprovalStatus = project.ApprovalStatus
	existing.UpdatedAt = now()
	r.s.state.projects[project.ID] = existing
	project.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	defer r.s.lock()()
	p, ok := r.s.state.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := r.s.withMembers(p)
	return &found, nil
}

// GetByIDForUpdate needs no extra locking: transactions already hold the store lock.
func (r *projectRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	return r.GetByID(ctx, id)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()
	defer r.s.lock()()
	return paginate(r.s.newestFirst(func(p models.Project) bool {
		return matchesFilter(p, filter)
	}), filter.Pagination), nil
}

func (r *projectRepository) ListExplorable(ctx context.Context, userID string, filter repository.ExploreFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()
	filter.Status = models.StatusActive
	filter.ApprovalStatus = models.ApprovalApproved
	defer r.s.lock()()

	return paginate(r.s.newestFirst(func(p models.Project) bool {
		if !matchesFilter(p, filter.ProjectFilter) || p.CreatorID == userID {
			return false
		}
		if filter.NeedsMentors != nil && p.NeedsMentors != *filter.NeedsMentors {
			return false
		}
		if filter.NeedsDevs != nil && p.NeedsDevs != *filter.NeedsDevs {
			return false
		}
		return !r.s.isActiveMember(p.ID, userID)
	}), filter.Pagination), nil
}

func (r *projectRepository) ListMyProjects(ctx context.Context, userID string, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()
	defer r.s.lock()()
	return paginate(r.s.newestFirst(func(p models.Project) bool {
		return matchesFilter(p, filter) && r.s.isActiveMember(p.ID, userID)
	}), filter.Pagination), nil
}

func (r *projectRepository) FindSimilar(ctx context.Context, creatorID, title string) ([]models.Project, error) {
	defer r.s.lock()()
	return r.s.newestFirst(func(p models.Project) bool {
		return p.CreatorID == creatorID && containsFold(p.Name, title)
	}), nil
}

func (r *projectRepository) CountActiveOwned(ctx context.Context, creatorID string) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, p := range r.s.state.projects {
		if p.CreatorID == creatorID && p.Status == models.StatusActive {
			n++
		}
	}
	return n, nil
}

func (r *projectRepository) ApplyToProject(ctx context.Context, participation *models.Participation) error {
	return (&participantRepository{r.s}).Create(ctx, participation)
}

func (r *projectRepository) LeaveProject(ctx context.Context, projectID, userID string) error {
	defer r.s.lock()()
	for i, p := range r.s.state.participations {
		if p.ProjectID == projectID && p.UserID == userID && !p.DeletedAt.Valid {
			r.s.state.participations[i].DeletedAt = gorm.DeletedAt{Time: now(), Valid: true}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *projectRepository) SubmitFeedback(ctx context.Context, feedback *models.Feedback) error {
	defer r.s.lock()()
	for _, f := range r.s.state.feedbacks {
		if f.ProjectID == feedback.ProjectID && f.UserID == feedback.UserID {
			return repository.ErrDuplicate
		}
	}
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now()
	}
	stored := *feedback
	stored.User = nil
	r.s.state.feedbacks = append(r.s.state.feedbacks, stored)
	return nil
}

func (r *projectRepository) GetProjectFeedbacks(ctx context.Context, projectID string) ([]models.Feedback, error) {
	defer r.s.lock()()
	out := []models.Feedback{}
	for _, f := range r.s.state.feedbacks {
		if f.ProjectID != projectID {
			continue
		}
		if u, ok := r.s.state.users[f.UserID]; ok {
			f.User = u.Public()
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *projectRepository) UserSummary(ctx context.Context, userID string) (*repository.UserSummary, error) {
	defer r.s.lock()()
	summary := &repository.UserSummary{
		UserID:               userID,
		ActiveParticipations: r.s.countParticipations(userID, models.StatusActive),
		CompletedProjects:    r.s.countParticipations(userID, models.StatusClosed),
	}
	for _, p := range r.s.state.projects {
		if p.CreatorID != userID {
			continue
		}
		summary.OwnedProjects++
		if p.Status == models.StatusActive {
			summary.ActiveOwnedProjects++
		}
	}
	for _, f := range r.s.state.feedbacks {
		if f.UserID == userID {
			summary.FeedbacksGiven++
		}
	}
	return summary, nil
}

func (r *projectRepository) Stats(ctx context.Context) (*repository.ProjectStats, error) {
	defer r.s.lock()()
	stats := &repository.ProjectStats{ByStatus: make(map[models.ProjectStatus]int64)}
	for _, p := range r.s.state.projects {
		stats.ByStatus[p.Status]++
		if p.ApprovalStatus == models.ApprovalPending {
			stats.PendingApproval++
		}
	}
	for _, p := range r.s.state.participations {
		if p.DeletedAt.Valid {
			continue
		}
		if project, ok := r.s.state.projects[p.ProjectID]; ok && project.Status == models.StatusActive {
			stats.ActiveParticipations++
		}
	}
	return stats, nil
}

func matchesFilter(p models.Project, f repository.ProjectFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.ApprovalStatus != "" && p.ApprovalStatus != f.ApprovalStatus {
		return false
	}
	if f.CreatedBy != "" && p.CreatorID != f.CreatedBy {
		return false
	}
	if f.Title != "" && !containsFold(p.Name, f.Title) {
		return false
	}
	return true
}
