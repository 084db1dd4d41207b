package entity

import (
	"time"
)

type ComplaintStatus string

const (
	StatusSubmitted          ComplaintStatus = "submitted"
	StatusAcknowledged       ComplaintStatus = "acknowledged"
	StatusAssigned           ComplaintStatus = "assigned"
	StatusInProgress         ComplaintStatus = "in_progress"
	StatusPendingInformation ComplaintStatus = "pending_information"
	StatusResolved           ComplaintStatus = "resolved"
	StatusClosed             ComplaintStatus = "closed"
	StatusRejected           ComplaintStatus = "rejected"
)

// AllStatuses is ordered along the happy path.
var AllStatuses = []ComplaintStatus{
	StatusSubmitted,
	StatusAcknowledged,
	StatusAssigned,
	StatusInProgress,
	StatusPendingInformation,
	StatusResolved,
	StatusClosed,
	StatusRejected,
}

var statusFlow = map[ComplaintStatus][]ComplaintStatus{
	StatusSubmitted:          {StatusAcknowledged, StatusRejected},
	StatusAcknowledged:       {StatusAssigned, StatusInProgress, StatusRejected},
	StatusAssigned:           {StatusInProgress, StatusPendingInformation},
	StatusInProgress:         {StatusResolved, StatusPendingInformation},
	StatusPendingInformation: {StatusInProgress, StatusClosed},
	StatusResolved:           {StatusClosed},
	StatusClosed:             {},
	StatusRejected:           {},
}

var statusLabels = map[ComplaintStatus]string{
	StatusSubmitted:          "Submitted",
	StatusAcknowledged:       "Acknowledged",
	StatusAssigned:           "Assigned",
	StatusInProgress:         "In Progress",
	StatusPendingInformation: "Pending Information",
	StatusResolved:           "Resolved",
	StatusClosed:             "Closed",
	StatusRejected:           "Rejected",
}

// Label is the human-readable status used in notifications.
func (s ComplaintStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s ComplaintStatus) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

func (s ComplaintStatus) IsTerminal() bool {
	return len(statusFlow[s]) == 0
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s ComplaintStatus) CanTransitionTo(target ComplaintStatus) bool {
	for _, next := range statusFlow[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns a copy of the allowed targets from s.
func (s ComplaintStatus) NextStatuses() []ComplaintStatus {
	next := statusFlow[s]
	out := make([]ComplaintStatus, len(next))
	copy(out, next)
	return out
}

// IsPending matches the dashboard definition of outstanding work.
func (s ComplaintStatus) IsPending() bool {
	return s == StatusSubmitted || s == StatusAcknowledged || s == StatusInProgress
}

func (s ComplaintStatus) IsResolved() bool {
	return s == StatusResolved || s == StatusClosed
}

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

var AllUrgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency}

func (u Urgency) Valid() bool {
	for _, v := range AllUrgencies {
		if v == u {
			return true
		}
	}
	return false
}

// TimelineEntry is one immutable step of a complaint's status history.
type TimelineEntry struct {
	Status    ComplaintStatus `json:"status" firestore:"status" bson:"status"`
	Timestamp time.Time       `json:"timestamp" firestore:"timestamp" bson:"timestamp"`
	Note      string          `json:"note,omitempty" firestore:"note,omitempty" bson:"note,omitempty"`
	UpdatedBy string          `json:"updated_by,omitempty" firestore:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

// Complaint is a citizen grievance. It lives in exactly one department partition.
type Complaint struct {
	ID          string          `json:"id" firestore:"id" bson:"id"`
	ComplaintID string          `json:"complaint_id" firestore:"complaintId" bson:"complaintId"`
	Department  DepartmentID    `json:"department" firestore:"department" bson:"department"`
	Category    string          `json:"category" firestore:"category" bson:"category"`
	SubCategory string          `json:"sub_category" firestore:"subCategory" bson:"subCategory"`
	Title       string          `json:"title" firestore:"title" bson:"title"`
	Description string          `json:"description" firestore:"description" bson:"description"`
	Location    string          `json:"location" firestore:"location" bson:"location"`
	PinCode     string          `json:"pin_code" firestore:"pinCode" bson:"pinCode"`
	Urgency     Urgency         `json:"urgency" firestore:"urgency" bson:"urgency"`
	Status      ComplaintStatus `json:"status" firestore:"status" bson:"status"`
	UserID      string          `json:"user_id" firestore:"userId" bson:"userId"`
	UserName    string          `json:"user_name" firestore:"userName" bson:"userName"`
	Attachments []string        `json:"attachments" firestore:"attachments" bson:"attachments"`
	AssignedTo  string          `json:"assigned_to,omitempty" firestore:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Timeline    []TimelineEntry `json:"timeline" firestore:"timeline" bson:"timeline"`
	CreatedAt   time.Time       `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time       `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}

// AppendStatus records a status change. The timeline entry is written first so
// Status always equals the last entry's status.
func (c *Complaint) AppendStatus(status ComplaintStatus, note, updatedBy string, at time.Time) {
	c.Timeline = append(c.Timeline, TimelineEntry{
		Status:    status,
		Timestamp: at,
		Note:      note,
		UpdatedBy: updatedBy,
	})
	c.Status = status
}

func (c *Complaint) LastTimelineEntry() (TimelineEntry, bool) {
	if len(c.Timeline) == 0 {
		return TimelineEntry{}, false
	}
	return c.Timeline[len(c.Timeline)-1], true
}

// Clone returns a deep copy so stored records cannot be mutated through results.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.Attachments = append([]string(nil), c.Attachments...)
	out.Timeline = append([]TimelineEntry(nil), c.Timeline...)
	return &out
}
