package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/repository"
	"grievance/pkg/metrics"
)

const (
	recentComplaintsLimit = 10
	urgentComplaintsLimit = 5
)

var pendingStatuses = []entity.ComplaintStatus{
	entity.StatusSubmitted,
	entity.StatusAcknowledged,
	entity.StatusInProgress,
}

// StatisticsAggregator computes dashboard counts across partitions.
type StatisticsAggregator struct {
	router  *PartitionRouter
	gather  *ScatterGather
	users   repository.UserRepository
	slaDays int
	now     func() time.Time
}

func NewStatisticsAggregator(router *PartitionRouter, gather *ScatterGather, users repository.UserRepository, slaDays int) *StatisticsAggregator {
	if slaDays <= 0 {
		slaDays = 7
	}
	return &StatisticsAggregator{
		router:  router,
		gather:  gather,
		users:   users,
		slaDays: slaDays,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (a *StatisticsAggregator) WithClock(now func() time.Time) *StatisticsAggregator {
	a.now = now
	return a
}

// ComputeOverview issues one Count and one grouped count per field against
// every partition, concurrently, then sums the per-department rows into the
// system totals.
func (a *StatisticsAggregator) ComputeOverview(ctx context.Context) (*entity.DashboardSnapshot, error) {
	partitions := a.router.Partitions()
	rows := make([]entity.DepartmentStats, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range partitions {
		g.Go(func() error {
			row, err := departmentStats(gctx, p)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}

	var (
		recent                     []*entity.Complaint
		publicUsers, staff, admins int64
	)
	g.Go(func() error {
		var err error
		recent, err = a.gather.Recent(gctx, repository.ComplaintFilter{}, recentComplaintsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		publicUsers, err = a.users.CountByRoles(gctx, entity.RolePublic)
		if err != nil {
			return err
		}
		staff, err = a.users.CountByRoles(gctx, entity.RoleDepartmentStaff, entity.RoleDepartmentHead)
		if err != nil {
			return err
		}
		admins, err = a.users.CountByRoles(gctx, entity.RoleAdmin)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.Default.FanoutFailures.WithLabelValues("overview").Inc()
		return nil, err
	}

	snapshot := &entity.DashboardSnapshot{
		PerDepartment:    rows,
		StatusBreakdown:  make(map[entity.ComplaintStatus]int64, len(entity.AllStatuses)),
		UrgencyBreakdown: make(map[entity.Urgency]int64, len(entity.AllUrgencies)),
		RecentComplaints: recent,
		GeneratedAt:      a.now(),
	}
	for _, row := range rows {
		snapshot.Totals.TotalComplaints += row.Total
		snapshot.Totals.PendingComplaints += row.Pending
		snapshot.Totals.ResolvedComplaints += row.Resolved
		snapshot.Totals.RejectedComplaints += row.Rejected
		for s, n := range row.StatusBreakdown {
			snapshot.StatusBreakdown[s] += n
		}
		for u, n := range row.UrgencyBreakdown {
			snapshot.UrgencyBreakdown[u] += n
		}
	}
	snapshot.Totals.OverallResolutionRate = entity.ResolutionRate(snapshot.Totals.ResolvedComplaints, snapshot.Totals.TotalComplaints)
	snapshot.Totals.TotalUsers = publicUsers
	snapshot.Totals.TotalStaff = staff
	snapshot.Totals.TotalAdmins = admins

	return snapshot, nil
}

func departmentStats(ctx context.Context, p Partition) (entity.DepartmentStats, error) {
	total, err := p.Repo.Count(ctx, repository.ComplaintFilter{})
	if err != nil {
		return entity.DepartmentStats{}, err
	}
	byStatus, err := p.Repo.CountBy(ctx, repository.FieldStatus)
	if err != nil {
		return entity.DepartmentStats{}, err
	}
	byUrgency, err := p.Repo.CountBy(ctx, repository.FieldUrgency)
	if err != nil {
		return entity.DepartmentStats{}, err
	}

	row := entity.DepartmentStats{
		ID:               p.Department.ID,
		Label:            p.Department.Label,
		Total:            total,
		StatusBreakdown:  make(map[entity.ComplaintStatus]int64, len(entity.AllStatuses)),
		UrgencyBreakdown: make(map[entity.Urgency]int64, len(entity.AllUrgencies)),
	}
	for _, s := range entity.AllStatuses {
		row.StatusBreakdown[s] = byStatus[string(s)]
	}
	for _, u := range entity.AllUrgencies {
		row.UrgencyBreakdown[u] = byUrgency[string(u)]
	}

	row.Resolved = row.StatusBreakdown[entity.StatusResolved] + row.StatusBreakdown[entity.StatusClosed]
	row.Rejected = row.StatusBreakdown[entity.StatusRejected]
	for _, s := range pendingStatuses {
		row.Pending += row.StatusBreakdown[s]
	}
	row.ResolutionRate = entity.ResolutionRate(row.Resolved, row.Total)

	return row, nil
}

// ComputeDepartmentDashboard builds the staff view of a single partition.
func (a *StatisticsAggregator) ComputeDepartmentDashboard(ctx context.Context, dept entity.DepartmentID) (*entity.DepartmentDashboard, error) {
	repo, err := a.router.Partition(dept)
	if err != nil {
		return nil, err
	}
	d, _ := a.router.Registry().Get(dept)

	now := a.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	slaCutoff := now.AddDate(0, 0, -a.slaDays)

	notClosed := make([]entity.ComplaintStatus, 0, len(entity.AllStatuses))
	for _, s := range entity.AllStatuses {
		if s != entity.StatusClosed {
			notClosed = append(notClosed, s)
		}
	}

	dash := &entity.DepartmentDashboard{Department: d.ID, Label: d.Label}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.TotalComplaints, err = repo.Count(gctx, repository.ComplaintFilter{})
		return err
	})
	g.Go(func() (err error) {
		dash.PendingAction, err = repo.Count(gctx, repository.ComplaintFilter{Statuses: pendingStatuses})
		return err
	})
	g.Go(func() (err error) {
		dash.ResolvedThisMonth, err = repo.Count(gctx, repository.ComplaintFilter{
			Statuses:     []entity.ComplaintStatus{entity.StatusResolved, entity.StatusClosed},
			UpdatedAfter: monthStart,
		})
		return err
	})
	g.Go(func() (err error) {
		dash.SLABreaches, err = repo.Count(gctx, repository.ComplaintFilter{
			Statuses:      pendingStatuses,
			CreatedBefore: slaCutoff,
		})
		return err
	})
	g.Go(func() error {
		urgent, err := repo.List(gctx, repository.ComplaintFilter{
			Urgencies: []entity.Urgency{entity.UrgencyHigh, entity.UrgencyEmergency},
			Statuses:  notClosed,
		})
		if err != nil {
			return err
		}
		SortNewestFirst(urgent)
		if len(urgent) > urgentComplaintsLimit {
			urgent = urgent[:urgentComplaintsLimit]
		}
		dash.UrgentComplaints = urgent
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.Default.FanoutFailures.WithLabelValues("department_dashboard").Inc()
		return nil, err
	}
	return dash, nil
}
