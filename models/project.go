// models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is stored as a sub-document of its project.
type Todo struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id"`
	Title        string              `json:"title" bson:"title"`
	Description  string              `json:"description,omitempty" bson:"description,omitempty"`
	Completed    bool                `json:"completed" bson:"completed"`
	DueDate      *time.Time          `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	ReminderDate *time.Time          `json:"reminderDate,omitempty" bson:"reminderDate,omitempty"`
	AssignedTo   *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// Project model
type Project struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Todos       []Todo             `json:"todos" bson:"todos"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Membership links a user to a project they collaborate on. Removal is a
// soft delete: RemovedAt is set and ExpiresAt schedules the TTL purge
// according to the project owner's plan tier.
type Membership struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID primitive.ObjectID `json:"projectId" bson:"projectId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Role      string             `json:"role" bson:"role"` // "member" or "editor"
	AddedAt   time.Time          `json:"addedAt" bson:"addedAt"`
	RemovedAt *time.Time         `json:"removedAt,omitempty" bson:"removedAt,omitempty"`
	ExpiresAt *time.Time         `json:"-" bson:"expiresAt,omitempty"`
}

// ProjectRequest model for creating or updating a project
type ProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// TodoRequest model for creating or updating a todo
type TodoRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ReminderDate *time.Time `json:"reminderDate,omitempty"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
}
