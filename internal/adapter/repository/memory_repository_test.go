package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/domain/entity"
	domain "grievance/internal/domain/repository"
	"grievance/pkg/errors"
)

func sampleComplaint(id, key string, status entity.ComplaintStatus) *entity.Complaint {
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	c := &entity.Complaint{
		ID:          id,
		ComplaintID: key,
		Department:  entity.DepartmentWaterSupply,
		Title:       "Low pressure in Block C",
		Description: "Taps run dry every evening",
		UserID:      "citizen",
		UserName:    "Asha",
		Urgency:     entity.UrgencyMedium,
		CreatedAt:   at,
	}
	c.AppendStatus(status, "", "citizen", at)
	return c
}

func TestMemoryComplaintCreateRejectsDuplicateKey(t *testing.T) {
	repo := NewMemoryStore().ComplaintRepository("complaints_water_supply")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleComplaint("a", "POL-WATER-20240315-0001", entity.StatusSubmitted)))
	err := repo.Create(ctx, sampleComplaint("b", "POL-WATER-20240315-0001", entity.StatusSubmitted))
	assert.True(t, errors.Is(err, errors.CodeDuplicateKey))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "POL-WATER-20240315-0001", got.ComplaintID)

	_, err = repo.GetByID(ctx, "b")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestMemoryStoreSharesPartitionsByName(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.ComplaintRepository("complaints_roads").Create(ctx, sampleComplaint("a", "POL-ROAD-20240315-0001", entity.StatusSubmitted)))

	n, err := store.ComplaintRepository("complaints_roads").Count(ctx, domain.ComplaintFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.ComplaintRepository("complaints_health").Count(ctx, domain.ComplaintFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryComplaintUpdateKeepsIdentity(t *testing.T) {
	repo := NewMemoryStore().ComplaintRepository("complaints_water_supply")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleComplaint("a", "POL-WATER-20240315-0001", entity.StatusSubmitted)))

	updated, err := repo.Update(ctx, "POL-WATER-20240315-0001", func(c *entity.Complaint) error {
		c.ComplaintID = "POL-WATER-20240315-9999"
		c.ID = "z"
		c.AppendStatus(entity.StatusAcknowledged, "seen", "staff", time.Now())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "POL-WATER-20240315-0001", updated.ComplaintID)
	assert.Equal(t, "a", updated.ID)
	assert.Equal(t, entity.StatusAcknowledged, updated.Status)
	assert.Len(t, updated.Timeline, 2)

	// A failed mutation leaves the stored record untouched.
	_, err = repo.Update(ctx, "POL-WATER-20240315-0001", func(c *entity.Complaint) error {
		c.Title = "changed"
		return errors.InvalidTransition(string(c.Status), "submitted")
	})
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))

	got, err := repo.GetByComplaintID(ctx, "POL-WATER-20240315-0001")
	require.NoError(t, err)
	assert.Equal(t, "Low pressure in Block C", got.Title)

	_, err = repo.Update(ctx, "POL-WATER-20240315-0404", func(c *entity.Complaint) error { return nil })
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestMemoryComplaintReturnsCopies(t *testing.T) {
	repo := NewMemoryStore().ComplaintRepository("complaints_water_supply")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleComplaint("a", "POL-WATER-20240315-0001", entity.StatusSubmitted)))

	got, err := repo.GetByComplaintID(ctx, "POL-WATER-20240315-0001")
	require.NoError(t, err)
	got.Timeline[0].Note = "tampered"

	again, err := repo.GetByComplaintID(ctx, "POL-WATER-20240315-0001")
	require.NoError(t, err)
	assert.Empty(t, again.Timeline[0].Note)
}

func TestMemoryComplaintListCountAndGroup(t *testing.T) {
	repo := NewMemoryStore().ComplaintRepository("complaints_water_supply")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleComplaint("a", "POL-WATER-20240315-0001", entity.StatusSubmitted)))
	require.NoError(t, repo.Create(ctx, sampleComplaint("b", "POL-WATER-20240315-0002", entity.StatusSubmitted)))
	require.NoError(t, repo.Create(ctx, sampleComplaint("c", "POL-WATER-20240315-0003", entity.StatusRejected)))

	items, err := repo.List(ctx, domain.ComplaintFilter{Search: "block c"})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = repo.List(ctx, domain.ComplaintFilter{Search: "0002"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	n, err := repo.Count(ctx, domain.ComplaintFilter{Status: entity.StatusSubmitted})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	byStatus, err := repo.CountBy(ctx, domain.FieldStatus)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"submitted": 2, "rejected": 1}, byStatus)

	byUrgency, err := repo.CountBy(ctx, domain.FieldUrgency)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"medium": 3}, byUrgency)

	_, err = repo.CountBy(ctx, "title")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestMemoryComplaintCountByRejectsUnknownFieldWhenEmpty(t *testing.T) {
	repo := NewMemoryStore().ComplaintRepository("complaints_education")

	_, err := repo.CountBy(context.Background(), "title")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	counts, err := repo.CountBy(context.Background(), domain.FieldStatus)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Email: "Asha@Example.com", Role: entity.RolePublic}))
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u2", Email: "meena@example.com", Role: entity.RoleDepartmentStaff}))
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u3", Email: "root@example.com", Role: entity.RoleAdmin}))

	err := repo.Create(ctx, &entity.User{ID: "u4", Email: "asha@example.com"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	u, err := repo.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	n, err := repo.CountByRoles(ctx, entity.RoleDepartmentStaff, entity.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryNotificationRepository(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, repo.Create(ctx, &entity.Notification{
			ID:        id,
			UserID:    "citizen",
			Type:      entity.NotificationStatusUpdate,
			Title:     "Status Update",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	unread, err := repo.ListUnread(ctx, "citizen", 2)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "n3", unread[0].ID)
	assert.Equal(t, "n2", unread[1].ID)

	_, err = repo.MarkRead(ctx, "n3", "someone-else")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	read, err := repo.MarkRead(ctx, "n3", "citizen")
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err = repo.ListUnread(ctx, "citizen", 20)
	require.NoError(t, err)
	assert.Len(t, unread, 2)
}
