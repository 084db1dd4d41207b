package service

import (
	"context"
	"time"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/errors"
	"grievance/pkg/logger"
	"grievance/pkg/metrics"
)

// Partition pairs a department with the handle on its complaint collection.
type Partition struct {
	Department entity.Department
	Repo       repository.ComplaintRepository
}

// PartitionRouter owns the department -> partition handle map. It is built
// once at startup and read-only afterwards.
type PartitionRouter struct {
	registry   *DepartmentRegistry
	codec      *ComplaintIDCodec
	partitions []Partition
	byID       map[entity.DepartmentID]repository.ComplaintRepository
}

func NewPartitionRouter(registry *DepartmentRegistry, codec *ComplaintIDCodec, factory repository.ComplaintRepositoryFactory) *PartitionRouter {
	r := &PartitionRouter{
		registry: registry,
		codec:    codec,
		byID:     make(map[entity.DepartmentID]repository.ComplaintRepository, registry.Len()),
	}

	for _, d := range registry.All() {
		repo := &instrumentedRepository{
			ComplaintRepository: factory(d.Collection),
			partition:           string(d.ID),
			metrics:             metrics.Default,
		}
		r.partitions = append(r.partitions, Partition{Department: d, Repo: repo})
		r.byID[d.ID] = repo
	}

	return r
}

func (r *PartitionRouter) Registry() *DepartmentRegistry {
	return r.registry
}

func (r *PartitionRouter) Codec() *ComplaintIDCodec {
	return r.codec
}

// Partition returns the handle for dept. An unknown department is a caller error.
func (r *PartitionRouter) Partition(dept entity.DepartmentID) (repository.ComplaintRepository, error) {
	repo, ok := r.byID[dept]
	if !ok {
		return nil, errors.BadRequest("Unknown department: "+string(dept), nil)
	}
	return repo, nil
}

// Partitions returns every partition in registry order.
func (r *PartitionRouter) Partitions() []Partition {
	out := make([]Partition, len(r.partitions))
	copy(out, r.partitions)
	return out
}

// Select returns the partitions for depts, or all of them when depts is empty.
func (r *PartitionRouter) Select(depts []entity.DepartmentID) ([]Partition, error) {
	if len(depts) == 0 {
		return r.Partitions(), nil
	}
	out := make([]Partition, 0, len(depts))
	seen := make(map[entity.DepartmentID]bool, len(depts))
	for _, id := range depts {
		if seen[id] {
			continue
		}
		seen[id] = true
		repo, err := r.Partition(id)
		if err != nil {
			return nil, err
		}
		d, _ := r.registry.Get(id)
		out = append(out, Partition{Department: d, Repo: repo})
	}
	return out, nil
}

// Locate finds a complaint when its department may be unknown. A structured
// id goes straight to its partition; anything else, or a miss there, falls
// back to scanning all partitions in registry order (at most MaxDepartments).
func (r *PartitionRouter) Locate(ctx context.Context, complaintID string) (*entity.Complaint, Partition, error) {
	var checked entity.DepartmentID

	if parsed, ok := r.codec.Parse(complaintID); ok {
		repo := r.byID[parsed.Department.ID]
		c, err := repo.GetByComplaintID(ctx, complaintID)
		if err == nil {
			return c, Partition{Department: parsed.Department, Repo: repo}, nil
		}
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, Partition{}, err
		}
		checked = parsed.Department.ID
	}

	metrics.Default.FallbackScans.Inc()
	logger.Debug("Complaint %s not resolved by prefix, scanning %d partitions", complaintID, len(r.partitions))

	for _, p := range r.partitions {
		if p.Department.ID != checked {
			c, err := p.Repo.GetByComplaintID(ctx, complaintID)
			if err == nil {
				return c, p, nil
			}
			if !errors.Is(err, errors.CodeNotFound) {
				return nil, Partition{}, err
			}
		}

		// A raw storage identity is accepted in place of the business key.
		c, err := p.Repo.GetByID(ctx, complaintID)
		if err == nil {
			return c, p, nil
		}
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, Partition{}, err
		}
	}

	return nil, Partition{}, errors.NotFound("Complaint", nil)
}

type instrumentedRepository struct {
	repository.ComplaintRepository
	partition string
	metrics   *metrics.Metrics
}

func (r *instrumentedRepository) observe(op string, start time.Time, err error) {
	if err != nil && errors.Is(err, errors.CodeNotFound) {
		err = nil
	}
	r.metrics.ObservePartition(r.partition, op, time.Since(start).Seconds(), err)
}

func (r *instrumentedRepository) Create(ctx context.Context, c *entity.Complaint) (err error) {
	defer func(start time.Time) { r.observe("create", start, err) }(time.Now())
	return r.ComplaintRepository.Create(ctx, c)
}

func (r *instrumentedRepository) GetByComplaintID(ctx context.Context, id string) (c *entity.Complaint, err error) {
	defer func(start time.Time) { r.observe("get", start, err) }(time.Now())
	return r.ComplaintRepository.GetByComplaintID(ctx, id)
}

func (r *instrumentedRepository) GetByID(ctx context.Context, id string) (c *entity.Complaint, err error) {
	defer func(start time.Time) { r.observe("get_by_id", start, err) }(time.Now())
	return r.ComplaintRepository.GetByID(ctx, id)
}

func (r *instrumentedRepository) List(ctx context.Context, f repository.ComplaintFilter) (out []*entity.Complaint, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())
	return r.ComplaintRepository.List(ctx, f)
}

func (r *instrumentedRepository) Update(ctx context.Context, id string, m repository.ComplaintMutation) (c *entity.Complaint, err error) {
	defer func(start time.Time) { r.observe("update", start, err) }(time.Now())
	return r.ComplaintRepository.Update(ctx, id, m)
}

func (r *instrumentedRepository) Count(ctx context.Context, f repository.ComplaintFilter) (n int64, err error) {
	defer func(start time.Time) { r.observe("count", start, err) }(time.Now())
	return r.ComplaintRepository.Count(ctx, f)
}

func (r *instrumentedRepository) CountBy(ctx context.Context, field string) (m map[string]int64, err error) {
	defer func(start time.Time) { r.observe("count_by", start, err) }(time.Now())
	return r.ComplaintRepository.CountBy(ctx, field)
}
