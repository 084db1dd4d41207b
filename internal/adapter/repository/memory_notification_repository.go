package repository

import (
	"context"
	"sort"
	"sync"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

type memoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]entity.Notification
}

func NewMemoryNotificationRepository() repository.NotificationRepository {
	return &memoryNotificationRepository{notifications: make(map[string]entity.Notification)}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[notification.ID] = *notification
	return nil
}

func (r *memoryNotificationRepository) ListUnread(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryNotificationRepository) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return nil, errors.NotFound("Notification", nil)
	}
	n.IsRead = true
	r.notifications[id] = n
	return &n, nil
}
