package services

import (
	"context"

	"github.com/projeto-integrador-integra/integra-backend/internal/metrics"
	"github.com/projeto-integrador-integra/integra-backend/internal/models"
	"github.com/projeto-integrador-integra/integra-backend/pkg/logger"
)

// Notifier publishes user-facing notifications. Implementations must not
// fail the calling operation: delivery errors are logged and counted.
type Notifier interface {
	NotifyWelcome(ctx context.Context, user *models.User)
	NotifyGroupFormed(ctx context.Context, project *models.Project)
}

// NotificationService turns domain events into email tasks on the queue.
type NotificationService struct {
	queue TaskQueue
}

var _ Notifier = (*NotificationService)(nil)

func NewNotificationService(queue TaskQueue) *NotificationService {
	return &NotificationService{queue: queue}
}

func (s *NotificationService) NotifyWelcome(ctx context.Context, user *models.User) {
	s.dispatch(ctx, &EmailTask{
		Kind: EmailKindWelcome,
		To:   user.Email,
		Name: user.Name,
	})
}

// NotifyGroupFormed sends one email per member of the completed project.
func (s *NotificationService) NotifyGroupFormed(ctx context.Context, project *models.Project) {
	for _, member := range project.Members {
		s.dispatch(ctx, &EmailTask{
			Kind:        EmailKindGroupFormed,
			To:          member.Email,
			Name:        member.Name,
			ProjectID:   project.ID,
			ProjectName: project.Name,
		})
	}
}

func (s *NotificationService) dispatch(ctx context.Context, task *EmailTask) {
	if task.To == "" {
		metrics.ObserveNotification(task.Kind, "skipped")
		return
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("kind", task.Kind).
			Str("to", task.To).
			Msg("[Notification] Failed to enqueue email")
		metrics.ObserveNotification(task.Kind, "failed")
		return
	}
	metrics.ObserveNotification(task.Kind, "enqueued")
}
