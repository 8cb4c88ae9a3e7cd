// models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Invitation model. Pending invitations expire through the TTL index on
// ExpiresAt; accepting or declining freezes them by clearing the field.
type Invitation struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID    primitive.ObjectID  `json:"projectId" bson:"projectId"`
	InviterID    primitive.ObjectID  `json:"inviterId" bson:"inviterId"`
	InviteeEmail string              `json:"inviteeEmail" bson:"inviteeEmail"`
	InviteeID    *primitive.ObjectID `json:"inviteeId,omitempty" bson:"inviteeId,omitempty"`
	Token        string              `json:"token" bson:"token"`
	Role         string              `json:"role" bson:"role"`
	Status       string              `json:"status" bson:"status"` // "pending", "accepted", "declined"
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// InvitationRequest model for inviting a user to a project
type InvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty"`
}
