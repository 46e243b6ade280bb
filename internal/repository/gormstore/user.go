package gormstore

import (
	"context"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("Name", "Description", "Role", "ApprovalStatus").Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return r.first(ctx, "sub = ?", sub)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByEmailOrSub(ctx context.Context, email, sub string) (*models.User, error) {
	return r.first(ctx, "email = ? OR sub = ?", email, sub)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindAllWithFilters(ctx context.Context, filter repository.UserFilter) (*repository.Page[models.User], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.ApprovalStatus != "" {
		query = query.Where("approval_status = ?", filter.ApprovalStatus)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", likePattern(filter.Name))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return repository.NewPage(users, total, filter.Page, filter.Limit), nil
}

func (r *userRepository) findByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
