package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock()()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	for _, u := range r.s.state.users {
		if u.ID == user.ID || u.Sub == user.Sub || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	r.s.state.users[user.ID] = *user
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer r.s.lock()()
	existing, ok := r.s.state.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = user.Name
	existing.Description = user.Description
	existing.Role = user.Role
	existing.ApprovalStatus = user.ApprovalStatus
	existing.UpdatedAt = now()
	r.s.state.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Sub == sub })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepository) GetByEmailOrSub(ctx context.Context, email, sub string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email || u.Sub == sub })
}

func (r *userRepository) find(match func(models.User) bool) (*models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.state.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) FindAllWithFilters(ctx context.Context, filter repository.UserFilter) (*repository.Page[models.User], error) {
	filter.Normalize()
	defer r.s.lock()()

	var users []models.User
	for _, u := range r.s.state.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ApprovalStatus != "" && u.ApprovalStatus != filter.ApprovalStatus {
			continue
		}
		if filter.Name != "" && !containsFold(u.Name, filter.Name) {
			continue
		}
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Name < users[j].Name
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	start, end := filter.Window(len(users))
	return repository.NewPage(users[start:end], int64(len(users)), filter.Page, filter.Limit), nil
}
