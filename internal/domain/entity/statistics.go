package entity

import "time"

// DepartmentStats is one row of the admin dashboard.
type DepartmentStats struct {
	ID               DepartmentID              `json:"id"`
	Label            string                    `json:"label"`
	Total            int64                     `json:"total"`
	Pending          int64                     `json:"pending"`
	Resolved         int64                     `json:"resolved"`
	Rejected         int64                     `json:"rejected"`
	ResolutionRate   int64                     `json:"resolution_rate"`
	StatusBreakdown  map[ComplaintStatus]int64 `json:"status_breakdown"`
	UrgencyBreakdown map[Urgency]int64         `json:"urgency_breakdown"`
}

type OverviewTotals struct {
	TotalComplaints       int64 `json:"total_complaints"`
	PendingComplaints     int64 `json:"pending_complaints"`
	ResolvedComplaints    int64 `json:"resolved_complaints"`
	RejectedComplaints    int64 `json:"rejected_complaints"`
	OverallResolutionRate int64 `json:"overall_resolution_rate"`
	TotalUsers            int64 `json:"total_users"`
	TotalStaff            int64 `json:"total_staff"`
	TotalAdmins           int64 `json:"total_admins"`
}

// DashboardSnapshot is the system-wide statistics view.
type DashboardSnapshot struct {
	Totals           OverviewTotals            `json:"totals"`
	PerDepartment    []DepartmentStats         `json:"per_department"`
	StatusBreakdown  map[ComplaintStatus]int64 `json:"status_breakdown"`
	UrgencyBreakdown map[Urgency]int64         `json:"urgency_breakdown"`
	RecentComplaints []*Complaint              `json:"recent_complaints"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// DepartmentDashboard is the staff-facing view of a single department.
type DepartmentDashboard struct {
	Department        DepartmentID `json:"department"`
	Label             string       `json:"label"`
	TotalComplaints   int64        `json:"total_complaints"`
	PendingAction     int64        `json:"pending_action"`
	ResolvedThisMonth int64        `json:"resolved_this_month"`
	SLABreaches       int64        `json:"sla_breaches"`
	UrgentComplaints  []*Complaint `json:"urgent_complaints"`
}

// ResolutionRate rounds 100*resolved/total to the nearest integer, 0 when total is 0.
func ResolutionRate(resolved, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (resolved*200 + total) / (total * 2)
}
