package service

import (
	"fmt"

	"grievance/internal/domain/entity"
)

// MaxDepartments bounds N. The router's fallback scan and every statistics
// fan-out are O(N), so the registry refuses to grow past it.
const MaxDepartments = 16

// DepartmentRegistry is the immutable department table built at startup.
type DepartmentRegistry struct {
	departments []entity.Department
	byID        map[entity.DepartmentID]entity.Department
	byCode      map[string]entity.Department
}

func NewDepartmentRegistry(departments []entity.Department) (*DepartmentRegistry, error) {
	if len(departments) == 0 {
		return nil, fmt.Errorf("department registry: no departments configured")
	}
	if len(departments) > MaxDepartments {
		return nil, fmt.Errorf("department registry: %d departments exceeds limit of %d", len(departments), MaxDepartments)
	}

	r := &DepartmentRegistry{
		departments: make([]entity.Department, 0, len(departments)),
		byID:        make(map[entity.DepartmentID]entity.Department, len(departments)),
		byCode:      make(map[string]entity.Department, len(departments)),
	}
	collections := make(map[string]bool, len(departments))

	for _, d := range departments {
		if d.ID == "" || d.Code == "" || d.Collection == "" {
			return nil, fmt.Errorf("department registry: department %q is missing id, code or collection", d.ID)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("department registry: duplicate id %q", d.ID)
		}
		if _, dup := r.byCode[d.Code]; dup {
			return nil, fmt.Errorf("department registry: duplicate code %q", d.Code)
		}
		if collections[d.Collection] {
			return nil, fmt.Errorf("department registry: duplicate collection %q", d.Collection)
		}
		collections[d.Collection] = true
		r.departments = append(r.departments, d)
		r.byID[d.ID] = d
		r.byCode[d.Code] = d
	}

	return r, nil
}

// MustDefaultRegistry builds the registry of the reference deployment.
func MustDefaultRegistry() *DepartmentRegistry {
	r, err := NewDepartmentRegistry(DefaultDepartments())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *DepartmentRegistry) All() []entity.Department {
	out := make([]entity.Department, len(r.departments))
	copy(out, r.departments)
	return out
}

func (r *DepartmentRegistry) IDs() []entity.DepartmentID {
	ids := make([]entity.DepartmentID, len(r.departments))
	for i, d := range r.departments {
		ids[i] = d.ID
	}
	return ids
}

func (r *DepartmentRegistry) Len() int {
	return len(r.departments)
}

func (r *DepartmentRegistry) Get(id entity.DepartmentID) (entity.Department, bool) {
	d, ok := r.byID[id]
	return d, ok
}

func (r *DepartmentRegistry) ByCode(code string) (entity.Department, bool) {
	d, ok := r.byCode[code]
	return d, ok
}

// Resolve maps a department to its partition collection.
func (r *DepartmentRegistry) Resolve(id entity.DepartmentID) (string, bool) {
	d, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return d.Collection, true
}

func DefaultDepartments() []entity.Department {
	return []entity.Department{
		{
			ID:         entity.DepartmentWaterSupply,
			Label:      "Water Supply",
			Code:       "WATER",
			Collection: "complaints_water_supply",
			SubCategories: []entity.SubCategory{
				{ID: "water_leakage", Label: "Water Leakage"},
				{ID: "no_water_supply", Label: "No Water Supply"},
				{ID: "low_pressure", Label: "Low Pressure Issues"},
				{ID: "water_quality", Label: "Water Quality Problems"},
				{ID: "pipe_burst", Label: "Pipe Burst"},
				{ID: "new_connection", Label: "New Connection Requests"},
				{ID: "billing_issues", Label: "Billing Issues"},
			},
		},
		{
			ID:         entity.DepartmentElectricity,
			Label:      "Electricity / Power",
			Code:       "ELEC",
			Collection: "complaints_electricity",
			SubCategories: []entity.SubCategory{
				{ID: "power_outage", Label: "Power Outage"},
				{ID: "street_light", Label: "Street Light Malfunction"},
				{ID: "voltage_fluctuation", Label: "Voltage Fluctuation"},
				{ID: "meter_problems", Label: "Meter Problems"},
				{ID: "new_connection", Label: "New Connection"},
				{ID: "billing_disputes", Label: "Billing Disputes"},
				{ID: "transformer_issues", Label: "Transformer Issues"},
			},
		},
		{
			ID:         entity.DepartmentSanitation,
			Label:      "Sanitation / Waste Management",
			Code:       "SANI",
			Collection: "complaints_sanitation",
			SubCategories: []entity.SubCategory{
				{ID: "garbage_not_collected", Label: "Garbage Not Collected"},
				{ID: "overflowing_bins", Label: "Overflowing Bins"},
				{ID: "street_cleaning", Label: "Street Cleaning Issues"},
				{ID: "drain_blockage", Label: "Drain Blockage"},
				{ID: "sewer_problems", Label: "Sewer Problems"},
				{ID: "illegal_dumping", Label: "Illegal Dumping"},
				{ID: "public_toilet", Label: "Public Toilet Maintenance"},
			},
		},
		{
			ID:         entity.DepartmentRoads,
			Label:      "Roads & Transportation",
			Code:       "ROAD",
			Collection: "complaints_roads",
			SubCategories: []entity.SubCategory{
				{ID: "potholes", Label: "Potholes"},
				{ID: "road_damage", Label: "Road Damage / Cracks"},
				{ID: "traffic_signal", Label: "Traffic Signal Malfunction"},
				{ID: "construction_delays", Label: "Road Construction Delays"},
				{ID: "street_name_boards", Label: "Missing Street Name Boards"},
				{ID: "bus_stop", Label: "Bus Stop Maintenance"},
				{ID: "pedestrian_crossing", Label: "Pedestrian Crossing Issues"},
			},
		},
		{
			ID:         entity.DepartmentHealth,
			Label:      "Health Services",
			Code:       "HLTH",
			Collection: "complaints_health",
			SubCategories: []entity.SubCategory{
				{ID: "public_toilet", Label: "Public Toilet Maintenance"},
				{ID: "disease_outbreak", Label: "Disease Outbreak Reports"},
				{ID: "vaccination", Label: "Vaccination Drive Requests"},
				{ID: "sanitation_inspection", Label: "Sanitation Inspection"},
				{ID: "pest_control", Label: "Pest Control Requests"},
				{ID: "food_safety", Label: "Food Safety Complaints"},
				{ID: "hospital_facility", Label: "Hospital Facility Issues"},
			},
		},
		{
			ID:         entity.DepartmentEducation,
			Label:      "Education",
			Code:       "EDUC",
			Collection: "complaints_education",
			SubCategories: []entity.SubCategory{
				{ID: "school_infrastructure", Label: "School Infrastructure Problems"},
				{ID: "teacher_shortage", Label: "Teacher Shortage / Issues"},
				{ID: "midday_meal", Label: "Mid-day Meal Quality"},
				{ID: "school_maintenance", Label: "School Maintenance"},
				{ID: "facility_upgrades", Label: "Facility Upgrades Needed"},
				{ID: "safety_concerns", Label: "Safety Concerns"},
				{ID: "educational_material", Label: "Educational Material Shortage"},
			},
		},
	}
}
