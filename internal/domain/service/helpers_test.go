package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grievance/internal/adapter/repository"
	"grievance/internal/domain/entity"
	domainrepo "grievance/internal/domain/repository"
	"grievance/internal/domain/service"
)

var baseTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	registry *service.DepartmentRegistry
	codec    *service.ComplaintIDCodec
	router   *service.PartitionRouter
	gather   *service.ScatterGather
	users    domainrepo.UserRepository
	seq      int
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithFactory(t, repository.NewMemoryStore().ComplaintRepository)
}

func newFixtureWithFactory(t *testing.T, factory domainrepo.ComplaintRepositoryFactory) *fixture {
	t.Helper()
	registry := service.MustDefaultRegistry()
	codec := service.NewComplaintIDCodec("POL", registry).WithClock(func() time.Time { return baseTime })
	router := service.NewPartitionRouter(registry, codec, factory)
	return &fixture{
		registry: registry,
		codec:    codec,
		router:   router,
		gather:   service.NewScatterGather(router),
		users:    repository.NewMemoryUserRepository(),
	}
}

// add stores a complaint directly in its partition.
func (f *fixture) add(t *testing.T, dept entity.DepartmentID, status entity.ComplaintStatus, urgency entity.Urgency, createdAt time.Time) *entity.Complaint {
	t.Helper()
	f.seq++
	d, ok := f.registry.Get(dept)
	require.True(t, ok)

	c := &entity.Complaint{
		ID:          fmt.Sprintf("doc-%d", f.seq),
		ComplaintID: fmt.Sprintf("POL-%s-%s-%04d", d.Code, createdAt.Format("20060102"), f.seq),
		Department:  dept,
		Category:    string(dept),
		Title:       fmt.Sprintf("Complaint %d", f.seq),
		Urgency:     urgency,
		UserID:      "citizen",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	c.AppendStatus(status, "", "citizen", createdAt)

	repo, err := f.router.Partition(dept)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

// failingFactory serves memory partitions except for collection, whose reads
// all fail.
func failingFactory(collection string) domainrepo.ComplaintRepositoryFactory {
	store := repository.NewMemoryStore()
	return func(name string) domainrepo.ComplaintRepository {
		repo := store.ComplaintRepository(name)
		if name == collection {
			return failingRepository{repo}
		}
		return repo
	}
}

var errBackendDown = errors.New("backend unavailable")

type failingRepository struct {
	domainrepo.ComplaintRepository
}

func (failingRepository) List(ctx context.Context, f domainrepo.ComplaintFilter) ([]*entity.Complaint, error) {
	return nil, errBackendDown
}

func (failingRepository) Count(ctx context.Context, f domainrepo.ComplaintFilter) (int64, error) {
	return 0, errBackendDown
}

func (failingRepository) CountBy(ctx context.Context, field string) (map[string]int64, error) {
	return nil, errBackendDown
}
