// services/notification_service.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/models"
)

// Realtime event names. Every event goes to the recipient's personal
// channel, named by UserChannel.
const (
	EventNotificationCreated  = "notification-created"
	EventNotificationUpdated  = "notification-updated"
	EventNotificationDeleted  = "notification-deleted"
	EventNotificationsCleared = "notifications-cleared"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// NotificationStore is the persistence surface the service depends on.
type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	InsertMany(ctx context.Context, notifications []models.Notification) ([]models.Notification, error)
	FindByUniquenessKey(ctx context.Context, key string) (*models.Notification, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	List(ctx context.Context, userID primitive.ObjectID, limit, skip int64, unreadOnly bool) ([]models.Notification, error)
	Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error)
	ExistsSince(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectKey string, since time.Time) (bool, error)
}

// EventPublisher pushes an event to a realtime channel. Publishing is
// fire-and-forget: the service logs failures and moves on.
type EventPublisher interface {
	Publish(event, channel string, payload interface{}) error
}

// PlanResolver looks up the subscription tier of a user.
type PlanResolver interface {
	GetPlanTier(ctx context.Context, userID primitive.ObjectID) (models.PlanTier, error)
}

// RelationLoader resolves summaries of the entities a notification points
// at for the expanded payload.
type RelationLoader interface {
	ProjectRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error)
	UserRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error)
	TodoRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error)
	InvitationRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error)
}

// PushSender delivers a native push to the user's registered device.
type PushSender interface {
	SendPush(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error
}

// NotificationInput describes a notification to create.
type NotificationInput struct {
	UserID    primitive.ObjectID
	Type      models.NotificationType
	Title     string
	Message   string
	ActionURL string

	RelatedProjectID    *primitive.ObjectID
	RelatedInvitationID *primitive.ObjectID
	RelatedUserID       *primitive.ObjectID
	RelatedTodoID       *primitive.ObjectID
	RelatedCommentID    *primitive.ObjectID

	Metadata map[string]interface{}
}

// ListOptions controls pagination of GetNotifications.
type ListOptions struct {
	Limit      int64
	Skip       int64
	UnreadOnly bool
}

// NotificationPage is one page of notifications plus the counters clients
// render badges from. UnreadCount always covers all unread notifications;
// Total covers whatever filter the page was built with.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	Total         int64                 `json:"total"`
}

// NotificationService owns the notification lifecycle: uniqueness
// replacement, retention tagging, persistence and realtime publishing.
type NotificationService struct {
	store     NotificationStore
	publisher EventPublisher
	plans     PlanResolver
	relations RelationLoader
	push      PushSender
}

func NewNotificationService(store NotificationStore, publisher EventPublisher, plans PlanResolver, relations RelationLoader, push PushSender) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		plans:     plans,
		relations: relations,
		push:      push,
	}
}

// UserChannel names the personal realtime channel of a user.
func UserChannel(userID primitive.ObjectID) string {
	return "user-" + userID.Hex()
}

// subjectKeyFor picks the entity a notification is about. Priority: todo,
// then invitation, then project, then (for member_added only) the related
// user. Types carrying none of these have no subject and never replace
// each other.
func subjectKeyFor(in NotificationInput) string {
	switch {
	case in.RelatedTodoID != nil:
		return in.RelatedTodoID.Hex()
	case in.RelatedInvitationID != nil:
		return in.RelatedInvitationID.Hex()
	case in.RelatedProjectID != nil:
		return in.RelatedProjectID.Hex()
	case in.RelatedUserID != nil && in.Type == models.NotificationMemberAdded:
		return in.RelatedUserID.Hex()
	}
	return ""
}

// uniquenessKeyFor hashes (user, type, subject) into the value guarded by
// the partial unique index.
func uniquenessKeyFor(userID primitive.ObjectID, notificationType models.NotificationType, subjectKey string) string {
	sum := sha256.Sum256([]byte(userID.Hex() + "|" + string(notificationType) + "|" + subjectKey))
	return hex.EncodeToString(sum[:])
}

// CreateNotification persists a notification and announces it on the
// recipient's channel. When the subject already has a live notification of
// the same type, the old one is replaced: a notification-deleted event for
// it precedes the notification-created event for the new record.
func (s *NotificationService) CreateNotification(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if in.UserID.IsZero() {
		return nil, fmt.Errorf("notification recipient is required")
	}
	if in.Type == "" {
		return nil, fmt.Errorf("notification type is required")
	}

	tier, err := s.plans.GetPlanTier(ctx, in.UserID)
	if err != nil {
		log.Printf("Plan tier lookup failed for user %s, assuming free: %v", in.UserID.Hex(), err)
		tier = models.PlanFree
	}

	now := time.Now()
	importance := ClassifyImportance(in.Type)
	subjectKey := subjectKeyFor(in)

	notification := &models.Notification{
		UserID:              in.UserID,
		Type:                in.Type,
		Title:               in.Title,
		Message:             in.Message,
		ActionURL:           in.ActionURL,
		RelatedProjectID:    in.RelatedProjectID,
		RelatedInvitationID: in.RelatedInvitationID,
		RelatedUserID:       in.RelatedUserID,
		RelatedTodoID:       in.RelatedTodoID,
		RelatedCommentID:    in.RelatedCommentID,
		Metadata:            in.Metadata,
		PlanTier:            tier,
		Importance:          importance,
		SubjectKey:          subjectKey,
		ExpiresAt:           ExpirationFor(tier, importance, now),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if subjectKey != "" {
		notification.UniquenessKey = uniquenessKeyFor(in.UserID, in.Type, subjectKey)
	}

	var replacedID *primitive.ObjectID
	for attempt := 0; ; attempt++ {
		if notification.UniquenessKey != "" {
			existing, err := s.store.FindByUniquenessKey(ctx, notification.UniquenessKey)
			if err != nil {
				return nil, fmt.Errorf("failed to check for existing notification: %w", err)
			}
			if existing != nil {
				if _, err := s.store.DeleteByID(ctx, existing.ID); err != nil {
					return nil, fmt.Errorf("failed to replace notification: %w", err)
				}
				id := existing.ID
				replacedID = &id
			}
		}

		notification.ID = primitive.NewObjectID()
		err := s.store.Insert(ctx, notification)
		if err == nil {
			break
		}
		// A concurrent create took the uniqueness slot between the check
		// and the insert. Replace the winner once, then give up.
		if mongo.IsDuplicateKeyError(err) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if replacedID != nil {
		s.publish(EventNotificationDeleted, in.UserID, replacedID.Hex())
	}
	s.publish(EventNotificationCreated, in.UserID, s.expand(ctx, notification))

	if importance == models.ImportanceCritical {
		s.sendPush(notification)
	}

	return notification, nil
}

// CreateBulkNotifications persists a batch in one write. The batch skips
// the replacement pass; records that would collide with a live uniqueness
// slot are dropped instead. One notification-created event fires per
// record actually inserted.
func (s *NotificationService) CreateBulkNotifications(ctx context.Context, inputs []NotificationInput) ([]models.Notification, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	now := time.Now()
	tiers := map[primitive.ObjectID]models.PlanTier{}
	records := make([]models.Notification, 0, len(inputs))

	for _, in := range inputs {
		if in.UserID.IsZero() || in.Type == "" {
			log.Printf("Skipping bulk notification with missing recipient or type")
			continue
		}

		tier, ok := tiers[in.UserID]
		if !ok {
			var err error
			tier, err = s.plans.GetPlanTier(ctx, in.UserID)
			if err != nil {
				log.Printf("Plan tier lookup failed for user %s, assuming free: %v", in.UserID.Hex(), err)
				tier = models.PlanFree
			}
			tiers[in.UserID] = tier
		}

		importance := ClassifyImportance(in.Type)
		subjectKey := subjectKeyFor(in)

		record := models.Notification{
			ID:                  primitive.NewObjectID(),
			UserID:              in.UserID,
			Type:                in.Type,
			Title:               in.Title,
			Message:             in.Message,
			ActionURL:           in.ActionURL,
			RelatedProjectID:    in.RelatedProjectID,
			RelatedInvitationID: in.RelatedInvitationID,
			RelatedUserID:       in.RelatedUserID,
			RelatedTodoID:       in.RelatedTodoID,
			RelatedCommentID:    in.RelatedCommentID,
			Metadata:            in.Metadata,
			PlanTier:            tier,
			Importance:          importance,
			SubjectKey:          subjectKey,
			ExpiresAt:           ExpirationFor(tier, importance, now),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if subjectKey != "" {
			record.UniquenessKey = uniquenessKeyFor(in.UserID, in.Type, subjectKey)
		}
		records = append(records, record)
	}

	inserted, err := s.store.InsertMany(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications: %w", err)
	}
	if len(inserted) < len(records) {
		log.Printf("Bulk create skipped %d duplicate notifications", len(records)-len(inserted))
	}

	for i := range inserted {
		record := &inserted[i]
		s.publish(EventNotificationCreated, record.UserID, s.expand(ctx, record))
		if record.Importance == models.ImportanceCritical {
			s.sendPush(record)
		}
	}
	return inserted, nil
}

// MarkAsRead flips the read flag of a notification owned by userID and
// returns the updated record, or nil when there is no such notification.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	notification, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if notification == nil {
		return nil, nil
	}
	s.publish(EventNotificationUpdated, userID, s.expand(ctx, notification))
	return notification, nil
}

// MarkAllAsRead flips every unread notification of the user. No event is
// published; clients refetch after the bulk call.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

// DeleteNotification removes a notification owned by userID. The deleted
// event fires only when something was actually removed.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	deleted, err := s.store.DeleteOwned(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	if deleted {
		s.publish(EventNotificationDeleted, userID, id.Hex())
	}
	return deleted, nil
}

// ClearAllNotifications wipes the user's notification list. The cleared
// event carries no payload and fires only when something was removed.
func (s *NotificationService) ClearAllNotifications(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	if count > 0 {
		s.publish(EventNotificationsCleared, userID, nil)
	}
	return count, nil
}

// GetNotifications returns a newest-first page plus unread and total
// counters. Both counters reflect collection state, not page boundaries.
func (s *NotificationService) GetNotifications(ctx context.Context, userID primitive.ObjectID, opts ListOptions) (*NotificationPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}

	notifications, err := s.store.List(ctx, userID, limit, skip, opts.UnreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	total, err := s.store.Count(ctx, userID, opts.UnreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	unread, err := s.store.Count(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationPage{
		Notifications: notifications,
		UnreadCount:   unread,
		Total:         total,
	}, nil
}

// HasRecentNotification reports whether the user was already notified about
// subjectID with this type inside the window. It rate-limits repeated
// alerts and is independent of the uniqueness replacement rule.
func (s *NotificationService) HasRecentNotification(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectID primitive.ObjectID, window time.Duration) (bool, error) {
	since := time.Now().Add(-window)
	return s.store.ExistsSince(ctx, userID, notificationType, subjectID.Hex(), since)
}

func (s *NotificationService) publish(event string, userID primitive.ObjectID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event, UserChannel(userID), payload); err != nil {
		log.Printf("Failed to publish %s for user %s: %v", event, userID.Hex(), err)
	}
}

func (s *NotificationService) sendPush(notification *models.Notification) {
	if s.push == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data := map[string]string{
			"notificationId": notification.ID.Hex(),
			"type":           string(notification.Type),
		}
		if err := s.push.SendPush(ctx, notification.UserID, notification.Title, notification.Message, data); err != nil {
			log.Printf("Push delivery failed for user %s: %v", notification.UserID.Hex(), err)
		}
	}()
}

// expand resolves relation summaries for the realtime payload. Lookup
// failures degrade to the raw notification.
func (s *NotificationService) expand(ctx context.Context, notification *models.Notification) *models.ExpandedNotification {
	expanded := &models.ExpandedNotification{Notification: *notification}
	if s.relations == nil {
		return expanded
	}

	if notification.RelatedProjectID != nil {
		if ref, err := s.relations.ProjectRef(ctx, *notification.RelatedProjectID); err != nil {
			log.Printf("Failed to expand project relation: %v", err)
		} else {
			expanded.RelatedProject = ref
		}
	}
	if notification.RelatedUserID != nil {
		if ref, err := s.relations.UserRef(ctx, *notification.RelatedUserID); err != nil {
			log.Printf("Failed to expand user relation: %v", err)
		} else {
			expanded.RelatedUser = ref
		}
	}
	if notification.RelatedTodoID != nil {
		if ref, err := s.relations.TodoRef(ctx, *notification.RelatedTodoID); err != nil {
			log.Printf("Failed to expand todo relation: %v", err)
		} else {
			expanded.RelatedTodo = ref
		}
	}
	if notification.RelatedInvitationID != nil {
		if ref, err := s.relations.InvitationRef(ctx, *notification.RelatedInvitationID); err != nil {
			log.Printf("Failed to expand invitation relation: %v", err)
		} else {
			expanded.RelatedInvitation = ref
		}
	}
	return expanded
}
