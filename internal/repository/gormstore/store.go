// Package gormstore implements the repository ports on top of gorm.
package gormstore

import (
	"context"
	"errors"
	"strings"

	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Projects() repository.ProjectRepository {
	return &projectRepository{db: s.db}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{db: s.db}
}

func (s *Store) Participants() repository.ParticipantRepository {
	return &participantRepository{db: s.db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return repository.ErrDuplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// likeEscaper escapes LIKE metacharacters so user input matches literally.
// Clauses using likePattern must declare ESCAPE '!', which reads the same on
// sqlite, mysql and postgres.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
