package gormstore

import (
	"context"
	"errors"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"gorm.io/gorm"
)

type participantRepository struct {
	db *gorm.DB
}

// Create inserts the participation unless an active one already exists for the
// pair. A partial unique index cannot express this on mysql, so callers
// serialise on the project row lock and this check reports the duplicate.
func (r *participantRepository) Create(ctx context.Context, participation *models.Participation) error {
	if _, err := r.GetActive(ctx, participation.ProjectID, participation.UserID); err == nil {
		return repository.ErrDuplicate
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	res := r.db.WithContext(ctx).Create(participation)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func (r *participantRepository) GetActive(ctx context.Context, projectID, userID string) (*models.Participation, error) {
	var p models.Participation
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *participantRepository) HasParticipated(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Participation{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *participantRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Participation{}).
		Joins("JOIN projects ON projects.id = project_participants.project_id").
		Where("project_participants.user_id = ? AND projects.status = ?", userID, models.StatusActive).
		Count(&count).Error
	return count, err
}

// membersOf returns the active members of each project, in join order.
func (r *participantRepository) membersOf(ctx context.Context, projectIDs []string) (map[string][]models.User, error) {
	members := make(map[string][]models.User, len(projectIDs))
	if len(projectIDs) == 0 {
		return members, nil
	}

	var rows []models.Participation
	if err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}
	users, err := (&userRepository{db: r.db}).findByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if u, ok := users[row.UserID]; ok {
			members[row.ProjectID] = append(members[row.ProjectID], u)
		}
	}
	return members, nil
}
