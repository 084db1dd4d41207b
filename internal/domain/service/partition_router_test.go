package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/domain/entity"
	"grievance/pkg/errors"
)

func TestLocateByStructuredID(t *testing.T) {
	f := newFixture(t)
	c := f.add(t, entity.DepartmentRoads, entity.StatusSubmitted, entity.UrgencyHigh, baseTime)

	found, p, err := f.router.Locate(context.Background(), c.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentRoads, p.Department.ID)
	assert.Equal(t, c.ComplaintID, found.ComplaintID)
}

func TestLocateFallsBackToScan(t *testing.T) {
	f := newFixture(t)
	c := f.add(t, entity.DepartmentHealth, entity.StatusSubmitted, entity.UrgencyLow, baseTime)

	// Storage identity instead of the business key.
	found, p, err := f.router.Locate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentHealth, p.Department.ID)
	assert.Equal(t, c.ComplaintID, found.ComplaintID)
}

func TestLocateScansWhenPrefixPointsElsewhere(t *testing.T) {
	f := newFixture(t)

	// A record whose id names the water partition but is stored in education.
	c := &entity.Complaint{ID: "legacy-1", ComplaintID: "POL-WATER-20240301-0001", Department: entity.DepartmentEducation}
	repo, err := f.router.Partition(entity.DepartmentEducation)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))

	found, p, err := f.router.Locate(context.Background(), c.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentEducation, p.Department.ID)
	assert.Equal(t, c.ComplaintID, found.ComplaintID)
}

func TestLocateNotFound(t *testing.T) {
	f := newFixture(t)
	f.add(t, entity.DepartmentRoads, entity.StatusSubmitted, entity.UrgencyHigh, baseTime)

	_, _, err := f.router.Locate(context.Background(), "POL-ROAD-20240101-9999")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, _, err = f.router.Locate(context.Background(), "nonsense")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestPartitionUnknownDepartment(t *testing.T) {
	f := newFixture(t)

	_, err := f.router.Partition("parks")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.router.Select([]entity.DepartmentID{entity.DepartmentRoads, "parks"})
	assert.Error(t, err)
}

func TestSelectDeduplicates(t *testing.T) {
	f := newFixture(t)

	ps, err := f.router.Select([]entity.DepartmentID{entity.DepartmentRoads, entity.DepartmentRoads, entity.DepartmentHealth})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, entity.DepartmentRoads, ps[0].Department.ID)
	assert.Equal(t, entity.DepartmentHealth, ps[1].Department.ID)

	all, err := f.router.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, f.registry.Len())
}
