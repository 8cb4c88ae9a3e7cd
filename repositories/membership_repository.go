package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/config"
	"github.com/LFroesch/project-management-sub010/models"
)

type MembershipRepository struct {
	collection *mongo.Collection
}

func NewMembershipRepository(db *mongo.Client) *MembershipRepository {
	return &MembershipRepository{
		collection: config.GetCollection(db, "memberships"),
	}
}

// Add creates an active membership. The partial unique index rejects a
// second active membership for the same (project, user) pair.
func (r *MembershipRepository) Add(ctx context.Context, projectID, userID primitive.ObjectID, role string) (*models.Membership, error) {
	if role == "" {
		role = "member"
	}
	membership := models.Membership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		AddedAt:   time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, &membership)
	if mongo.IsDuplicateKeyError(err) {
		return r.findActive(ctx, projectID, userID)
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) findActive(ctx context.Context, projectID, userID primitive.ObjectID) (*models.Membership, error) {
	var membership models.Membership
	filter := bson.M{
		"projectId": projectID,
		"userId":    userID,
		"removedAt": bson.M{"$exists": false},
	}
	err := r.collection.FindOne(ctx, filter).Decode(&membership)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Remove soft-deletes an active membership and schedules its purge.
func (r *MembershipRepository) Remove(ctx context.Context, projectID, userID primitive.ObjectID, purgeAt time.Time) (bool, error) {
	filter := bson.M{
		"projectId": projectID,
		"userId":    userID,
		"removedAt": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"removedAt": time.Now(),
			"expiresAt": purgeAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	membership, err := r.findActive(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

// ListMembers returns the active memberships of a project.
func (r *MembershipRepository) ListMembers(ctx context.Context, projectID primitive.ObjectID) ([]models.Membership, error) {
	filter := bson.M{
		"projectId": projectID,
		"removedAt": bson.M{"$exists": false},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	memberships := []models.Membership{}
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ProjectIDsForUser returns ids of projects the user actively belongs to.
func (r *MembershipRepository) ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"userId":    userID,
		"removedAt": bson.M{"$exists": false},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var memberships []models.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ProjectID)
	}
	return ids, nil
}
