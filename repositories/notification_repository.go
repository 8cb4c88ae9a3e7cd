package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LFroesch/project-management-sub010/config"
	"github.com/LFroesch/project-management-sub010/models"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Client) *NotificationRepository {
	return &NotificationRepository{
		collection: config.GetCollection(db, "notifications"),
	}
}

// Insert stores a single notification. A duplicate uniquenessKey surfaces
// as a driver duplicate-key error for the caller to handle.
func (r *NotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// InsertMany stores a batch in one unordered write and returns the subset
// that was actually inserted. Records rejected by the uniqueness index are
// skipped, not fatal.
func (r *NotificationRepository) InsertMany(ctx context.Context, notifications []models.Notification) ([]models.Notification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, 0, len(notifications))
	for i := range notifications {
		docs = append(docs, notifications[i])
	}

	res, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}
	if res == nil {
		return nil, nil
	}

	insertedIDs := make(map[interface{}]bool, len(res.InsertedIDs))
	for _, id := range res.InsertedIDs {
		insertedIDs[id] = true
	}

	inserted := make([]models.Notification, 0, len(res.InsertedIDs))
	for _, n := range notifications {
		if insertedIDs[n.ID] {
			inserted = append(inserted, n)
		}
	}
	return inserted, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindByUniquenessKey returns the live notification holding the given key,
// or nil when there is none.
func (r *NotificationRepository) FindByUniquenessKey(ctx context.Context, key string) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"uniquenessKey": key}).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// MarkRead flips isRead on a notification owned by userID and returns the
// updated document, or nil when no such notification exists.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{
		"$set": bson.M{
			"isRead":    true,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notification models.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID, "isRead": false}
	update := bson.M{
		"$set": bson.M{
			"isRead":    true,
			"updatedAt": time.Now(),
		},
	}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteOwned removes a notification only when it belongs to userID.
func (r *NotificationRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns a newest-first page of the user's notifications.
func (r *NotificationRepository) List(ctx context.Context, userID primitive.ObjectID, limit, skip int64, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(skip)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}
	return r.collection.CountDocuments(ctx, filter)
}

// ExistsSince reports whether the user already received a notification of
// the given type about the given subject at or after since.
func (r *NotificationRepository) ExistsSince(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectKey string, since time.Time) (bool, error) {
	filter := bson.M{
		"userId":    userID,
		"type":      notificationType,
		"createdAt": bson.M{"$gte": since},
	}
	if subjectKey != "" {
		filter["subjectKey"] = subjectKey
	} else {
		filter["subjectKey"] = bson.M{"$exists": false}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
