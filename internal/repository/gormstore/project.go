package gormstore

import (
	"context"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepository struct {
	db *gorm.DB
}

var projectColumns = []string{
	"Name", "Description", "Tags", "NeedsMentors", "NeedsDevs",
	"MaxParticipants", "Status", "ApprovalStatus",
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return translate(r.db.WithContext(ctx).Create(project).Error)
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).Select(projectColumns).Updates(project)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

// GetByIDForUpdate locks the project row. SQLite ignores the locking clause
// and relies on its database-level write lock instead.
func (r *projectRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *projectRepository) get(ctx context.Context, query *gorm.DB, id string) (*models.Project, error) {
	var project models.Project
	if err := query.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, translate(err)
	}
	projects := []models.Project{project}
	if err := r.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()
	query := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter)
	return r.page(ctx, query, filter.Pagination)
}

func (r *projectRepository) ListExplorable(ctx context.Context, userID string, filter repository.ExploreFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()
	filter.Status = models.StatusActive
	filter.ApprovalStatus = models.ApprovalApproved

	joined := r.db.Model(&models.Participation{}).
		Select("project_id").
		Where("user_id = ? AND deleted_at IS NULL", userID)

	query := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter.ProjectFilter).
		Where("creator_id <> ?", userID).
		Where("id NOT IN (?)", joined)
	if filter.NeedsMentors != nil {
		query = query.Where("needs_mentors = ?", *filter.NeedsMentors)
	}
	if filter.NeedsDevs != nil {
		query = query.Where("needs_devs = ?", *filter.NeedsDevs)
	}
	return r.page(ctx, query, filter.Pagination)
}

func (r *projectRepository) ListMyProjects(ctx context.Context, userID string, filter repository.ProjectFilter) (*repository.Page[models.Project], error) {
	filter.Normalize()

	joined := r.db.Model(&models.Participation{}).
		Select("project_id").
		Where("user_id = ? AND deleted_at IS NULL", userID)

	query := applyProjectFilter(r.db.WithContext(ctx).Model(&models.Project{}), filter).
		Where("id IN (?)", joined)
	return r.page(ctx, query, filter.Pagination)
}

func (r *projectRepository) FindSimilar(ctx context.Context, creatorID, title string) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND LOWER(name) LIKE ? ESCAPE '!'", creatorID, likePattern(title)).
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) CountActiveOwned(ctx context.Context, creatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("creator_id = ? AND status = ?", creatorID, models.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *projectRepository) ApplyToProject(ctx context.Context, participation *models.Participation) error {
	return (&participantRepository{db: r.db}).Create(ctx, participation)
}

func (r *projectRepository) LeaveProject(ctx context.Context, projectID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Participation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *projectRepository) SubmitFeedback(ctx context.Context, feedback *models.Feedback) error {
	return translate(r.db.WithContext(ctx).Create(feedback).Error)
}

func (r *projectRepository) GetProjectFeedbacks(ctx context.Context, projectID string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&feedbacks).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(feedbacks))
	for _, f := range feedbacks {
		ids = append(ids, f.UserID)
	}
	users, err := (&userRepository{db: r.db}).findByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range feedbacks {
		if u, ok := users[feedbacks[i].UserID]; ok {
			feedbacks[i].User = u.Public()
		}
	}
	if feedbacks == nil {
		feedbacks = []models.Feedback{}
	}
	return feedbacks, nil
}

func (r *projectRepository) UserSummary(ctx context.Context, userID string) (*repository.UserSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &repository.UserSummary{UserID: userID}

	if err := db.Model(&models.Project{}).
		Where("creator_id = ?", userID).
		Count(&summary.OwnedProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Project{}).
		Where("creator_id = ? AND status = ?", userID, models.StatusActive).
		Count(&summary.ActiveOwnedProjects).Error; err != nil {
		return nil, err
	}

	active, err := (&participantRepository{db: r.db}).CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.ActiveParticipations = active

	if err := db.Model(&models.Participation{}).
		Joins("JOIN projects ON projects.id = project_participants.project_id").
		Where("project_participants.user_id = ? AND projects.status = ?", userID, models.StatusClosed).
		Count(&summary.CompletedProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Feedback{}).
		Where("user_id = ?", userID).
		Count(&summary.FeedbacksGiven).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *projectRepository) Stats(ctx context.Context) (*repository.ProjectStats, error) {
	db := r.db.WithContext(ctx)

	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}
	if err := db.Model(&models.Project{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &repository.ProjectStats{ByStatus: make(map[models.ProjectStatus]int64, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	if err := db.Model(&models.Project{}).
		Where("approval_status = ?", models.ApprovalPending).
		Count(&stats.PendingApproval).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Participation{}).
		Joins("JOIN projects ON projects.id = project_participants.project_id").
		Where("projects.status = ?", models.StatusActive).
		Count(&stats.ActiveParticipations).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *projectRepository) page(ctx context.Context, query *gorm.DB, p repository.Pagination) (*repository.Page[models.Project], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	if err := r.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return repository.NewPage(projects, total, p.Page, p.Limit), nil
}

func (r *projectRepository) attachMembers(ctx context.Context, projects []models.Project) error {
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	members, err := (&participantRepository{db: r.db}).membersOf(ctx, ids)
	if err != nil {
		return err
	}
	for i := range projects {
		projects[i].Members = members[projects[i].ID]
		if projects[i].Members == nil {
			projects[i].Members = []models.User{}
		}
	}
	return nil
}

func applyProjectFilter(query *gorm.DB, filter repository.ProjectFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.CreatedBy != "" {
		query = query.Where("creator_id = ?", filter.CreatedBy)
	}
	if filter.Title != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", likePattern(filter.Title))
	}
	return query
}
