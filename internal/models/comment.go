package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in a Post and identified by its own ObjectID.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    string             `json:"userId" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID        string       `json:"id"`
	User      *UserCompact `json:"user"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CreateCommentRequest defines the request body for adding a comment
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	CommentID string `json:"commentId" validate:"required"`
	Text      string `json:"text"`
}

// DeleteCommentRequest defines the request body for removing a comment
type DeleteCommentRequest struct {
	CommentID string `json:"commentId" validate:"required"`
}
