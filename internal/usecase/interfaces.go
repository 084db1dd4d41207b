package usecase

import (
	"context"

	"grievance/internal/domain/entity"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (entity.Identity, error)
}

type TokenIssuer interface {
	Issue(user *entity.User) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BlobStore persists an uploaded file and returns its public URL.
type BlobStore interface {
	Store(ctx context.Context, data []byte, name, contentType string) (string, error)
}

// Notifier records a notification and delivers it to the recipient.
type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

// NotificationPublisher pushes a stored notification to live connections.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification *entity.Notification) error
}
