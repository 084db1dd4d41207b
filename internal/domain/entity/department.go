package entity

type DepartmentID string

const (
	DepartmentWaterSupply DepartmentID = "water_supply"
	DepartmentElectricity DepartmentID = "electricity"
	DepartmentSanitation  DepartmentID = "sanitation"
	DepartmentRoads       DepartmentID = "roads"
	DepartmentHealth      DepartmentID = "health"
	DepartmentEducation   DepartmentID = "education"
)

type SubCategory struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Department describes one civic department and the partition holding its complaints.
type Department struct {
	ID            DepartmentID  `json:"id"`
	Label         string        `json:"label"`
	Code          string        `json:"code"`
	Collection    string        `json:"-"`
	SubCategories []SubCategory `json:"sub_categories"`
}

func (d Department) HasSubCategory(id string) bool {
	for _, sc := range d.SubCategories {
		if sc.ID == id {
			return true
		}
	}
	return false
}
