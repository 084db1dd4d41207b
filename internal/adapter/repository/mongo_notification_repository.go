package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

type mongoNotificationRepository struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{coll: db.Collection("notifications")}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if _, err := r.coll.InsertOne(ctx, notification); err != nil {
		return errors.Internal("Failed to create notification", err)
	}
	return nil
}

func (r *mongoNotificationRepository) ListUnread(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "isRead": false}, opts)
	if err != nil {
		return nil, errors.Internal("Failed to list notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []*entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, errors.Internal("Failed to decode notifications", err)
	}
	return notifications, nil
}

func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n entity.Notification
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Internal("Failed to update notification", err)
	}
	return &n, nil
}
