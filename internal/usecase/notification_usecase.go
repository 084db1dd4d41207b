package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/logger"
	"grievance/pkg/metrics"
)

const unreadNotificationsLimit = 20

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	publisher        NotificationPublisher
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, publisher NotificationPublisher) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Notify stores the notification and pushes it to the recipient's open
// connections. A failed push is logged; the stored copy is still served by
// ListUnread.
func (uc *NotificationUseCase) Notify(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.IsRead = false

	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		return err
	}

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, n); err != nil {
			metrics.Default.NotificationFailures.Inc()
			logger.Warn("Failed to push notification %s to user %s: %v", n.ID, n.UserID, err)
		}
	}
	return nil
}

func (uc *NotificationUseCase) ListUnread(ctx context.Context, userID string) ([]*entity.Notification, error) {
	notifications, err := uc.notificationRepo.ListUnread(ctx, userID, unreadNotificationsLimit)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}
	return notifications, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	return uc.notificationRepo.MarkRead(ctx, id, userID)
}
