package repository

import (
	"context"
	"sync"
	"time"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

// MemoryStore holds every in-process partition so one factory can hand out
// handles by collection name, the same way a database client does.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryComplaintRepository
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryComplaintRepository)}
}

// ComplaintRepository returns the partition stored under collection,
// creating it on first use.
func (s *MemoryStore) ComplaintRepository(collection string) repository.ComplaintRepository {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, ok := s.collections[collection]
	if !ok {
		repo = &memoryComplaintRepository{
			collection:  collection,
			byKey:       make(map[string]*entity.Complaint),
			keyByStored: make(map[string]string),
		}
		s.collections[collection] = repo
	}
	return repo
}

type memoryComplaintRepository struct {
	collection  string
	mu          sync.RWMutex
	byKey       map[string]*entity.Complaint
	keyByStored map[string]string
}

func (r *memoryComplaintRepository) Collection() string {
	return r.collection
}

func (r *memoryComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[complaint.ComplaintID]; exists {
		return errors.DuplicateKey("Complaint", complaint.ComplaintID, nil)
	}

	now := time.Now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = complaint.CreatedAt
	}

	r.byKey[complaint.ComplaintID] = complaint.Clone()
	if complaint.ID != "" {
		r.keyByStored[complaint.ID] = complaint.ComplaintID
	}
	return nil
}

func (r *memoryComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byKey[complaintID]
	if !ok {
		return nil, errors.NotFound("Complaint", nil)
	}
	return c.Clone(), nil
}

func (r *memoryComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.keyByStored[id]
	if !ok {
		return nil, errors.NotFound("Complaint", nil)
	}
	return r.byKey[key].Clone(), nil
}

func (r *memoryComplaintRepository) List(ctx context.Context, filter repository.ComplaintFilter) ([]*entity.Complaint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Complaint
	for _, c := range r.byKey {
		if filter.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (r *memoryComplaintRepository) Update(ctx context.Context, complaintID string, mutate repository.ComplaintMutation) (*entity.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byKey[complaintID]
	if !ok {
		return nil, errors.NotFound("Complaint", nil)
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	// The business key and storage identity are immutable.
	next.ComplaintID = current.ComplaintID
	next.ID = current.ID

	r.byKey[complaintID] = next
	return next.Clone(), nil
}

func (r *memoryComplaintRepository) Count(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.byKey {
		if filter.Matches(c) {
			n++
		}
	}
	return n, nil
}

func (r *memoryComplaintRepository) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var key func(c *entity.Complaint) string
	switch field {
	case repository.FieldStatus:
		key = func(c *entity.Complaint) string { return string(c.Status) }
	case repository.FieldUrgency:
		key = func(c *entity.Complaint) string { return string(c.Urgency) }
	default:
		return nil, errors.BadRequest("Unsupported group-by field: "+field, nil)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64)
	for _, c := range r.byKey {
		out[key(c)]++
	}
	return out, nil
}
