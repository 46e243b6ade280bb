// Package memory is an in-process implementation of the repository ports.
// Transactions hold a single store-wide lock and restore a snapshot on error.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
)

type state struct {
	users          map[string]models.User
	projects       map[string]models.Project
	projectOrder   []string
	participations []models.Participation
	feedbacks      []models.Feedback
}

func (s *state) clone() *state {
	c := &state{
		users:          make(map[string]models.User, len(s.users)),
		projects:       make(map[string]models.Project, len(s.projects)),
		projectOrder:   append([]string(nil), s.projectOrder...),
		participations: append([]models.Participation(nil), s.participations...),
		feedbacks:      append([]models.Feedback(nil), s.feedbacks...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	return c
}

type Store struct {
	mu    *sync.Mutex
	state *state
	inTx  bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		state: &state{
			users:    make(map[string]models.User),
			projects: make(map[string]models.Project),
		},
	}
}

func (s *Store) Projects() repository.ProjectRepository         { return &projectRepository{s} }
func (s *Store) Users() repository.UserRepository               { return &userRepository{s} }
func (s *Store) Participants() repository.ParticipantRepository { return &participantRepository{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &Store{mu: s.mu, state: s.state, inTx: true}
	if err := fn(tx); err != nil {
		*s.state = *snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// lock takes the store lock unless the caller already holds it through a transaction.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func now() time.Time {
	return time.Now().UTC()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

// activeMembers returns the project's members in join order. Caller holds the lock.
func (s *Store) activeMembers(projectID string) []models.User {
	members := []models.User{}
	for _, p := range s.state.participations {
		if p.ProjectID != projectID || p.DeletedAt.Valid {
			continue
		}
		if u, ok := s.state.users[p.UserID]; ok {
			members = append(members, u)
		}
	}
	return members
}

func (s *Store) withMembers(p models.Project) models.Project {
	p.Tags = append(p.Tags[:0:0], p.Tags...)
	p.Members = s.activeMembers(p.ID)
	return p
}

func (s *Store) isActiveMember(projectID, userID string) bool {
	for _, p := range s.state.participations {
		if p.ProjectID == projectID && p.UserID == userID && !p.DeletedAt.Valid {
			return true
		}
	}
	return false
}

// newestFirst returns the projects matching keep, newest first, with members
// attached. Caller holds the lock.
func (s *Store) newestFirst(keep func(models.Project) bool) []models.Project {
	out := []models.Project{}
	for i := len(s.state.projectOrder) - 1; i >= 0; i-- {
		p := s.state.projects[s.state.projectOrder[i]]
		if keep(p) {
			out = append(out, s.withMembers(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func paginate(projects []models.Project, p repository.Pagination) *repository.Page[models.Project] {
	start, end := p.Window(len(projects))
	return repository.NewPage(projects[start:end], int64(len(projects)), p.Page, p.Limit)
}
