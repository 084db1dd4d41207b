package entity

import (
	"time"
)

type NotificationType string

const (
	NotificationStatusUpdate      NotificationType = "status_update"
	NotificationComplaintRejected NotificationType = "complaint_rejected"
	NotificationAssignment        NotificationType = "assignment"
	NotificationSystem            NotificationType = "system"
	NotificationGeneral           NotificationType = "general"
)

type Notification struct {
	ID          string           `json:"id" firestore:"id" bson:"id"`
	UserID      string           `json:"user_id" firestore:"userId" bson:"userId"`
	Type        NotificationType `json:"type" firestore:"type" bson:"type"`
	Title       string           `json:"title" firestore:"title" bson:"title"`
	Message     string           `json:"message" firestore:"message" bson:"message"`
	ComplaintID string           `json:"complaint_id,omitempty" firestore:"complaintId,omitempty" bson:"complaintId,omitempty"`
	IsRead      bool             `json:"is_read" firestore:"isRead" bson:"isRead"`
	CreatedAt   time.Time        `json:"created_at" firestore:"createdAt" bson:"createdAt"`
}
