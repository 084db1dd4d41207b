package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to ComplaintStatus }{
		{StatusSubmitted, StatusAcknowledged},
		{StatusSubmitted, StatusRejected},
		{StatusAcknowledged, StatusAssigned},
		{StatusAcknowledged, StatusInProgress},
		{StatusAcknowledged, StatusRejected},
		{StatusAssigned, StatusInProgress},
		{StatusAssigned, StatusPendingInformation},
		{StatusInProgress, StatusResolved},
		{StatusInProgress, StatusPendingInformation},
		{StatusPendingInformation, StatusInProgress},
		{StatusPendingInformation, StatusClosed},
		{StatusResolved, StatusClosed},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.False(t, StatusSubmitted.CanTransitionTo(StatusResolved))
	assert.False(t, StatusResolved.CanTransitionTo(StatusInProgress))
	assert.False(t, StatusSubmitted.CanTransitionTo(StatusSubmitted))

	for _, s := range AllStatuses {
		assert.False(t, StatusClosed.CanTransitionTo(s))
		assert.False(t, StatusRejected.CanTransitionTo(s))
	}
	assert.True(t, StatusClosed.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusResolved.IsTerminal())
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := StatusSubmitted.NextStatuses()
	next[0] = StatusClosed

	assert.Equal(t, []ComplaintStatus{StatusAcknowledged, StatusRejected}, StatusSubmitted.NextStatuses())
}

func TestStatusValidityAndLabels(t *testing.T) {
	assert.True(t, StatusPendingInformation.Valid())
	assert.False(t, ComplaintStatus("archived").Valid())

	assert.Equal(t, "In Progress", StatusInProgress.Label())
	assert.Equal(t, "Pending Information", StatusPendingInformation.Label())
	assert.Equal(t, "archived", ComplaintStatus("archived").Label())
}

func TestPendingAndResolvedBuckets(t *testing.T) {
	assert.True(t, StatusSubmitted.IsPending())
	assert.True(t, StatusAcknowledged.IsPending())
	assert.True(t, StatusInProgress.IsPending())
	assert.False(t, StatusAssigned.IsPending())
	assert.False(t, StatusPendingInformation.IsPending())

	assert.True(t, StatusResolved.IsResolved())
	assert.True(t, StatusClosed.IsResolved())
	assert.False(t, StatusRejected.IsResolved())
}

func TestUrgencyValid(t *testing.T) {
	for _, u := range AllUrgencies {
		assert.True(t, u.Valid())
	}
	assert.False(t, Urgency("critical").Valid())
}

func TestAppendStatusKeepsStatusInSyncWithTimeline(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &Complaint{}
	c.AppendStatus(StatusSubmitted, "Complaint submitted", "u1", at)
	c.AppendStatus(StatusAcknowledged, "", "staff1", at.Add(time.Hour))

	last, ok := c.LastTimelineEntry()
	assert.True(t, ok)
	assert.Equal(t, StatusAcknowledged, c.Status)
	assert.Equal(t, c.Status, last.Status)
	assert.Equal(t, "staff1", last.UpdatedBy)
	assert.Len(t, c.Timeline, 2)
}

func TestCloneIsDeep(t *testing.T) {
	c := &Complaint{
		ComplaintID: "POL-WATER-20240301-1234",
		Attachments: []string{"a.jpg"},
		Timeline:    []TimelineEntry{{Status: StatusSubmitted}},
	}
	cp := c.Clone()
	cp.Attachments[0] = "b.jpg"
	cp.Timeline[0].Status = StatusClosed

	assert.Equal(t, "a.jpg", c.Attachments[0])
	assert.Equal(t, StatusSubmitted, c.Timeline[0].Status)
	assert.Nil(t, (*Complaint)(nil).Clone())
}
