package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/adapter/repository"
	"grievance/internal/domain/entity"
	"grievance/internal/usecase"
	"grievance/pkg/errors"
)

type recordingPublisher struct {
	published []*entity.Notification
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, n *entity.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func TestNotifyStoresAndPublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	uc := usecase.NewNotificationUseCase(repository.NewMemoryNotificationRepository(), publisher)
	ctx := context.Background()

	n := &entity.Notification{UserID: "citizen", Type: entity.NotificationGeneral, Title: "Hello", IsRead: true}
	require.NoError(t, uc.Notify(ctx, n))

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	require.Len(t, publisher.published, 1)

	unread, err := uc.ListUnread(ctx, "citizen")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.False(t, unread[0].IsRead)
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	publisher := &recordingPublisher{err: stderrors.New("no subscribers")}
	uc := usecase.NewNotificationUseCase(repository.NewMemoryNotificationRepository(), publisher)
	ctx := context.Background()

	require.NoError(t, uc.Notify(ctx, &entity.Notification{UserID: "citizen", Title: "Hello"}))

	unread, err := uc.ListUnread(ctx, "citizen")
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestMarkRead(t *testing.T) {
	uc := usecase.NewNotificationUseCase(repository.NewMemoryNotificationRepository(), nil)
	ctx := context.Background()

	n := &entity.Notification{UserID: "citizen", Title: "Hello"}
	require.NoError(t, uc.Notify(ctx, n))

	_, err := uc.MarkRead(ctx, n.ID, "other")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	read, err := uc.MarkRead(ctx, n.ID, "citizen")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := uc.ListUnread(ctx, "citizen")
	require.NoError(t, err)
	assert.NotNil(t, unread)
	assert.Empty(t, unread)
}

func TestListUnreadIsCapped(t *testing.T) {
	uc := usecase.NewNotificationUseCase(repository.NewMemoryNotificationRepository(), nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, uc.Notify(ctx, &entity.Notification{UserID: "citizen", Title: "n"}))
	}

	unread, err := uc.ListUnread(ctx, "citizen")
	require.NoError(t, err)
	assert.Len(t, unread, 20)
}
