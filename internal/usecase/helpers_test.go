package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grievance/internal/adapter/repository"
	"grievance/internal/domain/entity"
	domainrepo "grievance/internal/domain/repository"
	"grievance/internal/domain/service"
	"grievance/internal/usecase"
)

var baseTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type memoryBlobs struct {
	mu    sync.Mutex
	names []string
}

func (b *memoryBlobs) Store(ctx context.Context, data []byte, name, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names = append(b.names, name)
	return "https://blobs.test/" + name, nil
}

type suite struct {
	users         domainrepo.UserRepository
	notifications domainrepo.NotificationRepository
	router        *service.PartitionRouter
	aggregator    *service.StatisticsAggregator
	complaints    *usecase.ComplaintUseCase
	blobs         *memoryBlobs

	mu       sync.Mutex
	suffixes []int
	counter  int
}

// newSuite wires the complaint use case over memory partitions. Notifications
// go through the real notification use case unless a notifier is given.
func newSuite(t *testing.T, notifier usecase.Notifier) *suite {
	t.Helper()
	s := &suite{
		users:         repository.NewMemoryUserRepository(),
		notifications: repository.NewMemoryNotificationRepository(),
		blobs:         &memoryBlobs{},
	}

	registry := service.MustDefaultRegistry()
	codec := service.NewComplaintIDCodec("POL", registry).
		WithClock(func() time.Time { return baseTime }).
		WithSuffixSource(s.nextSuffix)
	s.router = service.NewPartitionRouter(registry, codec, repository.NewMemoryStore().ComplaintRepository)
	gather := service.NewScatterGather(s.router)
	s.aggregator = service.NewStatisticsAggregator(s.router, gather, s.users, 7)

	if notifier == nil {
		notifier = usecase.NewNotificationUseCase(s.notifications, nil)
	}
	s.complaints = usecase.NewComplaintUseCase(s.router, gather, s.aggregator, s.users, notifier, s.blobs).
		WithClock(func() time.Time { return baseTime })

	for _, u := range []*entity.User{
		{ID: "citizen", Name: "Asha", Email: "asha@example.com", Role: entity.RolePublic},
		{ID: "other", Name: "Ravi", Email: "ravi@example.com", Role: entity.RolePublic},
		{ID: "water-staff", Name: "Meena", Email: "meena@example.com", Role: entity.RoleDepartmentStaff, Department: entity.DepartmentWaterSupply},
		{ID: "water-head", Name: "Kiran", Email: "kiran@example.com", Role: entity.RoleDepartmentHead, Department: entity.DepartmentWaterSupply},
		{ID: "roads-staff", Name: "Dev", Email: "dev@example.com", Role: entity.RoleDepartmentStaff, Department: entity.DepartmentRoads},
		{ID: "admin", Name: "Admin", Email: "admin@example.com", Role: entity.RoleAdmin},
	} {
		require.NoError(t, s.users.Create(context.Background(), u))
	}
	return s
}

// queueSuffixes fixes the next generated id suffixes; afterwards suffixes
// count up from 1.
func (s *suite) queueSuffixes(v ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffixes = append(s.suffixes, v...)
}

func (s *suite) nextSuffix() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.suffixes) > 0 {
		v := s.suffixes[0]
		s.suffixes = s.suffixes[1:]
		return v
	}
	s.counter++
	return s.counter
}

var (
	citizen    = entity.Identity{UserID: "citizen", Role: entity.RolePublic}
	other      = entity.Identity{UserID: "other", Role: entity.RolePublic}
	waterStaff = entity.Identity{UserID: "water-staff", Role: entity.RoleDepartmentStaff}
	roadsStaff = entity.Identity{UserID: "roads-staff", Role: entity.RoleDepartmentStaff}
	admin      = entity.Identity{UserID: "admin", Role: entity.RoleAdmin}
)

func waterInput() usecase.CreateComplaintInput {
	return usecase.CreateComplaintInput{
		Department:  entity.DepartmentWaterSupply,
		SubCategory: "pipe_burst",
		Title:       "Burst pipe on 5th cross",
		Description: "Water has been flowing onto the road since morning",
		Location:    "5th cross, Jayanagar",
		PinCode:     "560041",
		Urgency:     entity.UrgencyHigh,
	}
}
