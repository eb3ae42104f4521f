package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a post document stored in MongoDB. Likes and comments are
// embedded and rewritten together with the document.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"authorId" bson:"author_id"`
	Content   string             `json:"content" bson:"content"`
	Image     string             `json:"image" bson:"image"`
	Likes     []string           `json:"likes" bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
	Version   int64              `json:"-" bson:"version"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"required"`
}

// PostView is a post with author and commenter references expanded.
// A nil Author or comment User means the referenced account no longer
// resolves.
type PostView struct {
	ID        string        `json:"id"`
	Author    *UserCompact  `json:"author"`
	Content   string        `json:"content"`
	Image     string        `json:"image"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// HasLike reports whether userID is in the likes set.
func (p *Post) HasLike(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// AddLike inserts userID into the likes set. It is a no-op when already present.
func (p *Post) AddLike(userID string) {
	if p.HasLike(userID) {
		return
	}
	p.Likes = append(p.Likes, userID)
}

// RemoveLike drops every occurrence of userID. It is a no-op when absent.
func (p *Post) RemoveLike(userID string) {
	kept := p.Likes[:0]
	for _, id := range p.Likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.Likes = kept
}

// ToggleLike flips membership of userID and reports whether the user now likes
// the post.
func (p *Post) ToggleLike(userID string) bool {
	if p.HasLike(userID) {
		p.RemoveLike(userID)
		return false
	}
	p.AddLike(userID)
	return true
}

// Comment returns the embedded comment with the given id, or nil.
func (p *Post) Comment(id primitive.ObjectID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// RemoveComment deletes the comment with the given id, keeping the order of
// the rest. It reports whether anything was removed.
func (p *Post) RemoveComment(id primitive.ObjectID) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// ReferencedUserIDs returns the distinct author and commenter ids of the given
// posts.
func ReferencedUserIDs(posts ...*Post) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.AuthorID)
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}
	return ids
}

// Expand builds the display view of p using users keyed by id.
func (p *Post) Expand(users map[string]UserCompact) PostView {
	view := PostView{
		ID:        p.ID.Hex(),
		Author:    lookupCompact(users, p.AuthorID),
		Content:   p.Content,
		Image:     p.Image,
		Likes:     append([]string{}, p.Likes...),
		Comments:  make([]CommentView, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i, c := range p.Comments {
		view.Comments[i] = CommentView{
			ID:        c.ID.Hex(),
			User:      lookupCompact(users, c.UserID),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		}
	}
	return view
}

func lookupCompact(users map[string]UserCompact, id string) *UserCompact {
	u, ok := users[id]
	if !ok {
		return nil
	}
	return &u
}
