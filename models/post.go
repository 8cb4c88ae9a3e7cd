package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post model for media posts
type Post struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID     primitive.ObjectID   `json:"authorId" bson:"authorId"`
	Content      string               `json:"content,omitempty" bson:"content,omitempty"`
	MediaType    string               `json:"mediaType,omitempty" bson:"mediaType,omitempty"` // "image" or "video"
	MediaURL     string               `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	ThumbnailURL string               `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	Likes        []primitive.ObjectID `json:"likes,omitempty" bson:"likes,omitempty"`
	Comments     []Comment            `json:"comments,omitempty" bson:"comments,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Comment model for post comments
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  primitive.ObjectID `json:"authorId" bson:"authorId"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommentRequest model for adding a comment to a post
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}
