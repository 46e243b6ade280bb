package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
)

type participantRepository struct {
	s *Store
}

func (r *participantRepository) Create(ctx context.Context, participation *models.Participation) error {
	defer r.s.lock()()
	if participation.ID == "" {
		participation.ID = uuid.NewString()
	}
	if r.s.isActiveMember(participation.ProjectID, participation.UserID) {
		return repository.ErrDuplicate
	}
	if participation.JoinedAt.IsZero() {
		participation.JoinedAt = now()
	}
	r.s.state.participations = append(r.s.state.participations, *participation)
	return nil
}

func (r *participantRepository) GetActive(ctx context.Context, projectID, userID string) (*models.Participation, error) {
	defer r.s.lock()()
	for _, p := range r.s.state.participations {
		if p.ProjectID == projectID && p.UserID == userID && !p.DeletedAt.Valid {
			found := p
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *participantRepository) HasParticipated(ctx context.Context, projectID, userID string) (bool, error) {
	defer r.s.lock()()
	for _, p := range r.s.state.participations {
		if p.ProjectID == projectID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *participantRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	defer r.s.lock()()
	return r.s.countParticipations(userID, models.StatusActive), nil
}

// countParticipations counts the user's active participations in projects
// with the given status. Caller holds the lock.
func (s *Store) countParticipations(userID string, status models.ProjectStatus) int64 {
	var n int64
	for _, p := range s.state.participations {
		if p.UserID != userID || p.DeletedAt.Valid {
			continue
		}
		if project, ok := s.state.projects[p.ProjectID]; ok && project.Status == status {
			n++
		}
	}
	return n
}
