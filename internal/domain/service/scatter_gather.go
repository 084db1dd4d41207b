package service

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/logger"
	"grievance/pkg/metrics"
	"grievance/pkg/utils"
)

// QueryResult is one page of a cross-partition query.
type QueryResult struct {
	Items []*entity.Complaint
	Total int64
}

type DepartmentCount struct {
	ID    entity.DepartmentID `json:"id"`
	Label string              `json:"label"`
	Count int64               `json:"count"`
}

// ScatterGather runs the same query against every selected partition in
// parallel and merges the results in memory.
//
// A failing partition fails the whole query: the errgroup context cancels the
// remaining partitions and the first error is returned. Partial results are
// never served.
type ScatterGather struct {
	router *PartitionRouter
}

func NewScatterGather(router *PartitionRouter) *ScatterGather {
	return &ScatterGather{router: router}
}

type partitionResult struct {
	items []*entity.Complaint
	count int64
}

// QueryAll lists matching complaints newest first and returns one page.
// Complaints with identical createdAt are ordered by complaintId so every
// page request sees the same total order.
func (s *ScatterGather) QueryAll(ctx context.Context, filter repository.ComplaintFilter, page, pageSize int) (*QueryResult, error) {
	partitions, err := s.router.Select(filter.Departments)
	if err != nil {
		return nil, err
	}

	results := make([]partitionResult, len(partitions))
	g, gctx := errgroup.WithContext(ctx)

	for i, p := range partitions {
		g.Go(func() error {
			items, err := p.Repo.List(gctx, filter)
			if err != nil {
				return err
			}
			count, err := p.Repo.Count(gctx, filter)
			if err != nil {
				return err
			}
			results[i] = partitionResult{items: items, count: count}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.Default.FanoutFailures.WithLabelValues("query_all").Inc()
		logger.Error("Scatter-gather query failed: %v", err)
		return nil, err
	}

	var merged []*entity.Complaint
	var total int64
	for _, r := range results {
		merged = append(merged, r.items...)
		total += r.count
	}
	SortNewestFirst(merged)

	params := utils.NormalizePagination(page, pageSize)
	start, end := params.Window(len(merged))

	return &QueryResult{
		Items: merged[start:end],
		Total: total,
	}, nil
}

// Recent returns the n newest complaints matching filter across partitions.
func (s *ScatterGather) Recent(ctx context.Context, filter repository.ComplaintFilter, n int) ([]*entity.Complaint, error) {
	partitions, err := s.router.Select(filter.Departments)
	if err != nil {
		return nil, err
	}

	lists := make([][]*entity.Complaint, len(partitions))
	g, gctx := errgroup.WithContext(ctx)

	for i, p := range partitions {
		g.Go(func() error {
			items, err := p.Repo.List(gctx, filter)
			if err != nil {
				return err
			}
			SortNewestFirst(items)
			if len(items) > n {
				items = items[:n]
			}
			lists[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.Default.FanoutFailures.WithLabelValues("recent").Inc()
		return nil, err
	}

	var merged []*entity.Complaint
	for _, l := range lists {
		merged = append(merged, l...)
	}
	SortNewestFirst(merged)
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged, nil
}

// CountPerDepartment counts matches in every partition, in registry order.
func (s *ScatterGather) CountPerDepartment(ctx context.Context, filter repository.ComplaintFilter) ([]DepartmentCount, error) {
	partitions := s.router.Partitions()
	counts := make([]DepartmentCount, len(partitions))
	g, gctx := errgroup.WithContext(ctx)

	for i, p := range partitions {
		g.Go(func() error {
			n, err := p.Repo.Count(gctx, filter)
			if err != nil {
				return err
			}
			counts[i] = DepartmentCount{ID: p.Department.ID, Label: p.Department.Label, Count: n}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.Default.FanoutFailures.WithLabelValues("count_per_department").Inc()
		return nil, err
	}
	return counts, nil
}

func SortNewestFirst(items []*entity.Complaint) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ComplaintID < b.ComplaintID
	})
}
