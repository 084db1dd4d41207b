package repository

import (
	"context"
	"strings"
	"time"

	"grievance/internal/domain/entity"
)

// ComplaintFilter is the query shape shared by every partition backend.
// Zero values mean "no constraint".
type ComplaintFilter struct {
	Status        entity.ComplaintStatus
	Statuses      []entity.ComplaintStatus
	Urgency       entity.Urgency
	Urgencies     []entity.Urgency
	UserID        string
	Search        string
	CreatedBefore time.Time
	UpdatedAfter  time.Time
	// Departments narrows a scatter-gather to a subset of partitions; a single
	// partition backend ignores it.
	Departments []entity.DepartmentID
}

// Matches applies the filter in memory. Backends that cannot express a
// constraint natively use it to post-filter.
func (f ComplaintFilter) Matches(c *entity.Complaint) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, c.Status) {
		return false
	}
	if f.Urgency != "" && c.Urgency != f.Urgency {
		return false
	}
	if len(f.Urgencies) > 0 && !containsUrgency(f.Urgencies, c.Urgency) {
		return false
	}
	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}
	if !f.CreatedBefore.IsZero() && !c.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	if !f.UpdatedAfter.IsZero() && c.UpdatedAt.Before(f.UpdatedAfter) {
		return false
	}
	return f.MatchesSearch(c)
}

// MatchesSearch is a case-insensitive substring match over title,
// complaintId, userName and description.
func (f ComplaintFilter) MatchesSearch(c *entity.Complaint) bool {
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, hay := range []string{c.Title, c.ComplaintID, c.UserName, c.Description} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func containsStatus(list []entity.ComplaintStatus, s entity.ComplaintStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsUrgency(list []entity.Urgency, u entity.Urgency) bool {
	for _, v := range list {
		if v == u {
			return true
		}
	}
	return false
}

// Group-by fields accepted by CountBy.
const (
	FieldStatus  = "status"
	FieldUrgency = "urgency"
)

// ComplaintMutation edits a freshly read record inside an atomic update.
// Returning an error aborts the write.
type ComplaintMutation func(c *entity.Complaint) error

// ComplaintRepository is a handle on one department partition.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error)
	GetByID(ctx context.Context, id string) (*entity.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]*entity.Complaint, error)
	Update(ctx context.Context, complaintID string, mutate ComplaintMutation) (*entity.Complaint, error)
	Count(ctx context.Context, filter ComplaintFilter) (int64, error)
	CountBy(ctx context.Context, field string) (map[string]int64, error)
	Collection() string
}

// ComplaintRepositoryFactory opens the partition stored under collection.
type ComplaintRepositoryFactory func(collection string) ComplaintRepository
