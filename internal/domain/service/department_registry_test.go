package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grievance/internal/domain/entity"
	"grievance/internal/domain/service"
)

func TestDefaultRegistry(t *testing.T) {
	r := service.MustDefaultRegistry()

	assert.Equal(t, 6, r.Len())
	assert.Equal(t, entity.DepartmentWaterSupply, r.IDs()[0])

	collection, ok := r.Resolve(entity.DepartmentRoads)
	assert.True(t, ok)
	assert.Equal(t, "complaints_roads", collection)

	_, ok = r.Resolve("parks")
	assert.False(t, ok)

	d, ok := r.ByCode("ELEC")
	assert.True(t, ok)
	assert.Equal(t, entity.DepartmentElectricity, d.ID)
	assert.True(t, d.HasSubCategory("street_light"))
	assert.False(t, d.HasSubCategory("potholes"))
}

func TestRegistryRejectsInvalidTables(t *testing.T) {
	water := entity.Department{ID: "water", Code: "WATER", Collection: "c_water"}

	tests := []struct {
		name        string
		departments []entity.Department
	}{
		{"empty", nil},
		{"missing code", []entity.Department{{ID: "x", Collection: "c_x"}}},
		{"duplicate id", []entity.Department{water, {ID: "water", Code: "W2", Collection: "c_w2"}}},
		{"duplicate code", []entity.Department{water, {ID: "w2", Code: "WATER", Collection: "c_w2"}}},
		{"duplicate collection", []entity.Department{water, {ID: "w2", Code: "W2", Collection: "c_water"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.NewDepartmentRegistry(tc.departments)
			assert.Error(t, err)
		})
	}
}

func TestRegistryLimit(t *testing.T) {
	var departments []entity.Department
	for i := 0; i <= service.MaxDepartments; i++ {
		code := string(rune('A'+i)) + "X"
		departments = append(departments, entity.Department{
			ID:         entity.DepartmentID(code),
			Code:       code,
			Collection: "c_" + code,
		})
	}

	_, err := service.NewDepartmentRegistry(departments)
	assert.Error(t, err)

	_, err = service.NewDepartmentRegistry(departments[:service.MaxDepartments])
	assert.NoError(t, err)
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := service.MustDefaultRegistry()
	all := r.All()
	all[0].Label = "changed"

	d, _ := r.Get(entity.DepartmentWaterSupply)
	assert.Equal(t, "Water Supply", d.Label)
}

func TestComplaintIDGenerateAndParse(t *testing.T) {
	r := service.MustDefaultRegistry()
	codec := service.NewComplaintIDCodec("POL", r).
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }).
		WithSuffixSource(func() int { return 42 })

	id, err := codec.Generate(entity.DepartmentSanitation)
	require.NoError(t, err)
	assert.Equal(t, "POL-SANI-20240301-0042", id)

	parsed, ok := codec.Parse(id)
	require.True(t, ok)
	assert.Equal(t, entity.DepartmentSanitation, parsed.Department.ID)
	assert.Equal(t, "0042", parsed.Suffix)
	assert.Equal(t, 2024, parsed.Date.Year())

	_, err = codec.Generate("parks")
	assert.Error(t, err)
}

func TestComplaintIDParseRejectsForeignIDs(t *testing.T) {
	codec := service.NewComplaintIDCodec("POL", service.MustDefaultRegistry())

	for _, id := range []string{
		"",
		"abc123",
		"XYZ-WATER-20240301-1234",
		"POL-PARK-20240301-1234",
		"POL-WATER-2024031-1234",
		"POL-WATER-20240301-12a4",
		"POL-WATER-20240301-12345",
		"POL-WATER-20240301",
	} {
		_, ok := codec.Parse(id)
		assert.False(t, ok, id)
	}
}

func TestComplaintIDDefaultSuffixIsFourDigits(t *testing.T) {
	codec := service.NewComplaintIDCodec("POL", service.MustDefaultRegistry())

	for i := 0; i < 50; i++ {
		id, err := codec.Generate(entity.DepartmentHealth)
		require.NoError(t, err)
		parsed, ok := codec.Parse(id)
		require.True(t, ok, id)
		assert.Len(t, parsed.Suffix, 4)
	}
}
