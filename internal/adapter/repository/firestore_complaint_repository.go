package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

// firestoreComplaintRepository is one department partition. Documents are
// keyed by complaintId so the store itself rejects a duplicate business key.
type firestoreComplaintRepository struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreComplaintRepository(client *firestore.Client, collection string) repository.ComplaintRepository {
	return &firestoreComplaintRepository{
		client:     client,
		collection: collection,
	}
}

// FirestoreComplaintFactory binds a client to the partition factory used by the router.
func FirestoreComplaintFactory(client *firestore.Client) repository.ComplaintRepositoryFactory {
	return func(collection string) repository.ComplaintRepository {
		return NewFirestoreComplaintRepository(client, collection)
	}
}

func (r *firestoreComplaintRepository) Collection() string {
	return r.collection
}

func (r *firestoreComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	now := time.Now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = complaint.CreatedAt
	}

	_, err := r.client.Collection(r.collection).Doc(complaint.ComplaintID).Create(ctx, complaint)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.DuplicateKey("Complaint", complaint.ComplaintID, err)
		}
		return errors.Internal("Failed to create complaint", err)
	}

	return nil
}

func (r *firestoreComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	doc, err := r.client.Collection(r.collection).Doc(complaintID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Complaint", err)
		}
		return nil, errors.Internal("Failed to get complaint", err)
	}

	var complaint entity.Complaint
	if err := doc.DataTo(&complaint); err != nil {
		return nil, errors.Internal("Failed to parse complaint data", err)
	}

	return &complaint, nil
}

func (r *firestoreComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	iter := r.client.Collection(r.collection).Where("id", "==", id).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Complaint", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get complaint", err)
	}

	var complaint entity.Complaint
	if err := doc.DataTo(&complaint); err != nil {
		return nil, errors.Internal("Failed to parse complaint data", err)
	}

	return &complaint, nil
}

// nativeQuery applies the equality constraints Firestore can serve directly.
// It reports whether the filter was fully expressed; if not, callers
// post-filter with ComplaintFilter.Matches.
func (r *firestoreComplaintRepository) nativeQuery(filter repository.ComplaintFilter) (firestore.Query, bool) {
	query := r.client.Collection(r.collection).Query

	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.Urgency != "" {
		query = query.Where("urgency", "==", string(filter.Urgency))
	}
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}

	complete := filter.Search == "" &&
		len(filter.Statuses) == 0 &&
		len(filter.Urgencies) == 0 &&
		filter.CreatedBefore.IsZero() &&
		filter.UpdatedAfter.IsZero()

	return query, complete
}

func (r *firestoreComplaintRepository) List(ctx context.Context, filter repository.ComplaintFilter) ([]*entity.Complaint, error) {
	query, _ := r.nativeQuery(filter)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var complaints []*entity.Complaint
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate complaints", err)
		}

		var complaint entity.Complaint
		if err := doc.DataTo(&complaint); err != nil {
			return nil, errors.Internal("Failed to parse complaint data", err)
		}
		// Firestore has no substring or range-set operators we can combine
		// freely, so the remainder of the filter is applied here.
		if filter.Matches(&complaint) {
			complaints = append(complaints, &complaint)
		}
	}

	return complaints, nil
}

func (r *firestoreComplaintRepository) Update(ctx context.Context, complaintID string, mutate repository.ComplaintMutation) (*entity.Complaint, error) {
	docRef := r.client.Collection(r.collection).Doc(complaintID)
	var updated entity.Complaint

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Complaint", err)
			}
			return err
		}

		var complaint entity.Complaint
		if err := doc.DataTo(&complaint); err != nil {
			return errors.Internal("Failed to parse complaint data", err)
		}

		key, id := complaint.ComplaintID, complaint.ID
		if err := mutate(&complaint); err != nil {
			return err
		}
		complaint.ComplaintID, complaint.ID = key, id

		updated = complaint
		return tx.Set(docRef, &complaint)
	})

	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return nil, err
		}
		return nil, errors.Internal("Failed to update complaint", err)
	}

	return &updated, nil
}

func (r *firestoreComplaintRepository) Count(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	query, complete := r.nativeQuery(filter)
	if !complete {
		items, err := r.List(ctx, filter)
		if err != nil {
			return 0, err
		}
		return int64(len(items)), nil
	}
	return aggregateCount(ctx, query)
}

func (r *firestoreComplaintRepository) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	var values []string
	switch field {
	case repository.FieldStatus:
		for _, s := range entity.AllStatuses {
			values = append(values, string(s))
		}
	case repository.FieldUrgency:
		for _, u := range entity.AllUrgencies {
			values = append(values, string(u))
		}
	default:
		return nil, errors.BadRequest("Unsupported group-by field: "+field, nil)
	}

	// Firestore has no group-by; one aggregation count per known value.
	out := make(map[string]int64, len(values))
	for _, v := range values {
		n, err := aggregateCount(ctx, r.client.Collection(r.collection).Where(field, "==", v))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			out[v] = n
		}
	}
	return out, nil
}

func aggregateCount(ctx context.Context, query firestore.Query) (int64, error) {
	result, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to count complaints", err)
	}

	value, ok := result["all"].(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unexpected aggregation result", nil)
	}
	return value.GetIntegerValue(), nil
}
