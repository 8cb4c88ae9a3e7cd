// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanTier is the subscription level of an account. It decides how long
// notifications and soft-deleted records are retained.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// User model
type User struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	FullName     string             `json:"fullName" bson:"fullName"`
	UserType     string             `json:"userType" bson:"userType"` // "user" or "admin"
	PlanTier     PlanTier           `json:"planTier" bson:"planTier"`
	ProfilePic   string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	FCMToken     string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	LastActiveAt time.Time          `json:"lastActiveAt,omitempty" bson:"lastActiveAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
