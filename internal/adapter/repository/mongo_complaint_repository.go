package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

// optimisticRetries bounds the read-modify-replace loop in Update.
const optimisticRetries = 3

type mongoComplaintRepository struct {
	coll *mongo.Collection
}

func NewMongoComplaintRepository(db *mongo.Database, collection string) repository.ComplaintRepository {
	return &mongoComplaintRepository{coll: db.Collection(collection)}
}

func MongoComplaintFactory(db *mongo.Database) repository.ComplaintRepositoryFactory {
	return func(collection string) repository.ComplaintRepository {
		return NewMongoComplaintRepository(db, collection)
	}
}

func (r *mongoComplaintRepository) Collection() string {
	return r.coll.Name()
}

func (r *mongoComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	now := time.Now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = complaint.CreatedAt
	}

	if _, err := r.coll.InsertOne(ctx, complaint); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.DuplicateKey("Complaint", complaint.ComplaintID, err)
		}
		return errors.Internal("Failed to create complaint", err)
	}
	return nil
}

func (r *mongoComplaintRepository) findOne(ctx context.Context, filter bson.M) (*entity.Complaint, error) {
	var complaint entity.Complaint
	if err := r.coll.FindOne(ctx, filter).Decode(&complaint); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Complaint", err)
		}
		return nil, errors.Internal("Failed to get complaint", err)
	}
	return &complaint, nil
}

func (r *mongoComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	return r.findOne(ctx, bson.M{"complaintId": complaintID})
}

func (r *mongoComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// mongoFilter translates the whole filter; nothing is post-filtered.
func mongoFilter(f repository.ComplaintFilter) bson.M {
	q := bson.M{}

	statuses := bson.M{}
	if f.Status != "" {
		statuses["$eq"] = f.Status
	}
	if len(f.Statuses) > 0 {
		statuses["$in"] = f.Statuses
	}
	if len(statuses) > 0 {
		q["status"] = statuses
	}

	urgencies := bson.M{}
	if f.Urgency != "" {
		urgencies["$eq"] = f.Urgency
	}
	if len(f.Urgencies) > 0 {
		urgencies["$in"] = f.Urgencies
	}
	if len(urgencies) > 0 {
		q["urgency"] = urgencies
	}

	if f.UserID != "" {
		q["userId"] = f.UserID
	}
	if !f.CreatedBefore.IsZero() {
		q["createdAt"] = bson.M{"$lt": f.CreatedBefore}
	}
	if !f.UpdatedAfter.IsZero() {
		q["updatedAt"] = bson.M{"$gte": f.UpdatedAfter}
	}

	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"complaintId": rx},
			bson.M{"userName": rx},
			bson.M{"description": rx},
		}
	}

	return q
}

func (r *mongoComplaintRepository) List(ctx context.Context, filter repository.ComplaintFilter) ([]*entity.Complaint, error) {
	cursor, err := r.coll.Find(ctx, mongoFilter(filter))
	if err != nil {
		return nil, errors.Internal("Failed to list complaints", err)
	}
	defer cursor.Close(ctx)

	var complaints []*entity.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, errors.Internal("Failed to decode complaints", err)
	}
	return complaints, nil
}

// Update replaces the document only if updatedAt still matches what was read,
// retrying on a lost race.
func (r *mongoComplaintRepository) Update(ctx context.Context, complaintID string, mutate repository.ComplaintMutation) (*entity.Complaint, error) {
	for attempt := 0; attempt < optimisticRetries; attempt++ {
		current, err := r.GetByComplaintID(ctx, complaintID)
		if err != nil {
			return nil, err
		}

		readAt := current.UpdatedAt
		key, id := current.ComplaintID, current.ID
		if err := mutate(current); err != nil {
			return nil, err
		}
		current.ComplaintID, current.ID = key, id

		res, err := r.coll.ReplaceOne(ctx, bson.M{"complaintId": complaintID, "updatedAt": readAt}, current)
		if err != nil {
			return nil, errors.Internal("Failed to update complaint", err)
		}
		if res.MatchedCount == 1 {
			return current, nil
		}
	}

	return nil, errors.Conflict("Complaint was modified concurrently, please retry")
}

func (r *mongoComplaintRepository) Count(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, errors.Internal("Failed to count complaints", err)
	}
	return n, nil
}

func (r *mongoComplaintRepository) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	if field != repository.FieldStatus && field != repository.FieldUrgency {
		return nil, errors.BadRequest("Unsupported group-by field: "+field, nil)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Internal("Failed to aggregate complaints", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Value string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, errors.Internal("Failed to decode aggregation", err)
	}

	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[g.Value] = g.Count
	}
	return out, nil
}
