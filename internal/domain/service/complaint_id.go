package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"grievance/internal/domain/entity"
)

const complaintIDDateLayout = "20060102"

// ComplaintIDCodec generates and parses PREFIX-DEPTCODE-YYYYMMDD-NNNN identifiers.
type ComplaintIDCodec struct {
	prefix   string
	registry *DepartmentRegistry
	now      func() time.Time
	suffix   func() int
}

func NewComplaintIDCodec(prefix string, registry *DepartmentRegistry) *ComplaintIDCodec {
	return &ComplaintIDCodec{
		prefix:   prefix,
		registry: registry,
		now:      time.Now,
		suffix:   func() int { return 1000 + rand.IntN(9000) },
	}
}

// WithClock overrides the time source, for tests.
func (c *ComplaintIDCodec) WithClock(now func() time.Time) *ComplaintIDCodec {
	c.now = now
	return c
}

// WithSuffixSource overrides the random suffix, for tests.
func (c *ComplaintIDCodec) WithSuffixSource(suffix func() int) *ComplaintIDCodec {
	c.suffix = suffix
	return c
}

func (c *ComplaintIDCodec) Generate(dept entity.DepartmentID) (string, error) {
	d, ok := c.registry.Get(dept)
	if !ok {
		return "", fmt.Errorf("unknown department %q", dept)
	}
	return fmt.Sprintf("%s-%s-%s-%04d", c.prefix, d.Code, c.now().Format(complaintIDDateLayout), c.suffix()%10000), nil
}

type ParsedComplaintID struct {
	Department entity.Department
	Date       time.Time
	Suffix     string
}

// Parse decodes a structured identifier. ok is false for legacy or foreign ids,
// and for codes that do not map to a registered department.
func (c *ComplaintIDCodec) Parse(id string) (ParsedComplaintID, bool) {
	parts := strings.Split(id, "-")
	if len(parts) != 4 || parts[0] != c.prefix {
		return ParsedComplaintID{}, false
	}

	d, ok := c.registry.ByCode(parts[1])
	if !ok {
		return ParsedComplaintID{}, false
	}

	date, err := time.Parse(complaintIDDateLayout, parts[2])
	if err != nil {
		return ParsedComplaintID{}, false
	}

	if len(parts[3]) != 4 || !allDigits(parts[3]) {
		return ParsedComplaintID{}, false
	}

	return ParsedComplaintID{Department: d, Date: date, Suffix: parts[3]}, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
