package services

import (
	"context"
	"time"

	"github.com/projeto-integrador-integra/integra-backend/internal/metrics"
	"github.com/projeto-integrador-integra/integra-backend/internal/repository"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// StatsService periodically refreshes the project gauges from the store.
type StatsService struct {
	store         repository.Store
	schedule      string
	cronScheduler *cron.Cron
}

func NewStatsService(store repository.Store, schedule string) *StatsService {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &StatsService{store: store, schedule: schedule}
}

func (s *StatsService) StartScheduler() error {
	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			logger.Error().Err(err).Msg("[Stats] Refresh failed")
		}
	}); err != nil {
		return err
	}

	s.cronScheduler.Start()
	logger.Info().Str("schedule", s.schedule).Msg("[Stats] Scheduler started")
	return nil
}

func (s *StatsService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

// Refresh reads a stats snapshot and publishes it to the gauges.
func (s *StatsService) Refresh(ctx context.Context) error {
	stats, err := s.store.Projects().Stats(ctx)
	if err != nil {
		return err
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	metrics.SetProjectGauges(byStatus, stats.PendingApproval, stats.ActiveParticipations)
	return nil
}
