package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LFroesch/project-management-sub010/config"
	"github.com/LFroesch/project-management-sub010/models"
)

type InvitationRepository struct {
	collection *mongo.Collection
}

func NewInvitationRepository(db *mongo.Client) *InvitationRepository {
	return &InvitationRepository{
		collection: config.GetCollection(db, "invitations"),
	}
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if invitation.ID.IsZero() {
		invitation.ID = primitive.NewObjectID()
	}
	now := time.Now()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, invitation)
	return err
}

func (r *InvitationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindPending returns the open invitation for an email on a project, if any.
func (r *InvitationRepository) FindPending(ctx context.Context, projectID primitive.ObjectID, email string) (*models.Invitation, error) {
	filter := bson.M{
		"projectId":    projectID,
		"inviteeEmail": email,
		"status":       models.InvitationPending,
	}
	var invitation models.Invitation
	err := r.collection.FindOne(ctx, filter).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Refresh renews a pending invitation in place: new token, new expiry. The
// invitation keeps its id so a renewed invite replaces the old notification
// rather than stacking a second one.
func (r *InvitationRepository) Refresh(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) (*models.Invitation, error) {
	filter := bson.M{"_id": id, "status": models.InvitationPending}
	update := bson.M{
		"$set": bson.M{
			"token":     token,
			"expiresAt": expiresAt,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var invitation models.Invitation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Resolve moves a pending invitation to accepted or declined and clears the
// TTL field so the resolved record is kept.
func (r *InvitationRepository) Resolve(ctx context.Context, id primitive.ObjectID, status string, inviteeID primitive.ObjectID) (*models.Invitation, error) {
	filter := bson.M{"_id": id, "status": models.InvitationPending}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"inviteeId": inviteeID,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{"expiresAt": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var invitation models.Invitation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&invitation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListForEmail returns pending invitations addressed to an email.
func (r *InvitationRepository) ListForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	filter := bson.M{"inviteeEmail": email, "status": models.InvitationPending}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invitations := []models.Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListForProject returns every invitation on a project, newest first.
func (r *InvitationRepository) ListForProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Invitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invitations := []models.Invitation{}
	if err := cursor.All(ctx, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}
