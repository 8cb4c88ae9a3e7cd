package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies the event a notification describes.
type NotificationType string

const (
	NotificationProjectInvitation  NotificationType = "project_invitation"
	NotificationInvitationAccepted NotificationType = "invitation_accepted"
	NotificationInvitationDeclined NotificationType = "invitation_declined"
	NotificationMemberAdded        NotificationType = "member_added"
	NotificationMemberRemoved      NotificationType = "member_removed"
	NotificationTodoAssigned       NotificationType = "todo_assigned"
	NotificationTodoCompleted      NotificationType = "todo_completed"
	NotificationTodoDueSoon        NotificationType = "todo_due_soon"
	NotificationTodoOverdue        NotificationType = "todo_overdue"
	NotificationPostLiked          NotificationType = "post_liked"
	NotificationCommentAdded       NotificationType = "comment_added"
	NotificationDailyTodoSummary   NotificationType = "daily_todo_summary"
	NotificationAdminMessage       NotificationType = "admin_message"
)

// Importance buckets notification types for retention purposes.
type Importance string

const (
	ImportanceCritical  Importance = "critical"
	ImportanceStandard  Importance = "standard"
	ImportanceTransient Importance = "transient"
)

// Notification model
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // The user who receives the notification
	Type      NotificationType   `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	ActionURL string             `json:"actionUrl,omitempty" bson:"actionUrl,omitempty"`
	IsRead    bool               `json:"isRead" bson:"isRead"`

	RelatedProjectID    *primitive.ObjectID `json:"relatedProjectId,omitempty" bson:"relatedProjectId,omitempty"`
	RelatedInvitationID *primitive.ObjectID `json:"relatedInvitationId,omitempty" bson:"relatedInvitationId,omitempty"`
	RelatedUserID       *primitive.ObjectID `json:"relatedUserId,omitempty" bson:"relatedUserId,omitempty"`
	RelatedTodoID       *primitive.ObjectID `json:"relatedTodoId,omitempty" bson:"relatedTodoId,omitempty"`
	RelatedCommentID    *primitive.ObjectID `json:"relatedCommentId,omitempty" bson:"relatedCommentId,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"` // Optional type-specific data

	PlanTier   PlanTier   `json:"planTier" bson:"planTier"`     // Recipient's tier at creation time
	Importance Importance `json:"importance" bson:"importance"` // Derived from Type, drives retention

	SubjectKey    string `json:"-" bson:"subjectKey,omitempty"`    // Hex id of the entity this notification is about
	UniquenessKey string `json:"-" bson:"uniquenessKey,omitempty"` // At most one live value per (user, type, subject), index-enforced

	ExpiresAt *time.Time `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"` // TTL purge instant; unset means keep forever
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// RelatedRef is a light summary of a related entity, resolved when a
// notification is pushed over the websocket.
type RelatedRef struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// ExpandedNotification is the push payload for created/updated events: the
// stored notification plus resolved summaries of its relations.
type ExpandedNotification struct {
	Notification
	RelatedProject    *RelatedRef `json:"relatedProject,omitempty"`
	RelatedUser       *RelatedRef `json:"relatedUser,omitempty"`
	RelatedTodo       *RelatedRef `json:"relatedTodo,omitempty"`
	RelatedInvitation *RelatedRef `json:"relatedInvitation,omitempty"`
}
