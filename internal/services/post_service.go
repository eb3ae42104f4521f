package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultMaxRetries = 5

// PostOptions tunes the post aggregate.
type PostOptions struct {
	// MaxRetries bounds the re-read/re-apply loop run when a post changes
	// between read and write.
	MaxRetries int
	// CommentRequireText rejects empty comment text on add and edit.
	CommentRequireText bool
	// CommentMaxLength caps comment text in characters. Zero means no limit.
	CommentMaxLength int
}

// PostService owns the post/comment/like aggregate and the feed queries.
type PostService struct {
	posts  repositories.PostRepository
	users  repositories.UserRepository
	opts   PostOptions
	logger *slog.Logger
	now    func() time.Time
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, opts PostOptions, logger *slog.Logger) *PostService {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	return &PostService{
		posts:  posts,
		users:  users,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost stores a new post with no likes and no comments.
func (s *PostService) CreatePost(ctx context.Context, authorID, content, image string) (*models.PostView, error) {
	if content == "" {
		return nil, validationError("Content is required")
	}
	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		Image:    image,
		Likes:    []string{},
		Comments: []models.Comment{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.expandOne(ctx, post)
}

// GetPost returns the expanded post.
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, post)
}

// ListFeed returns every post, newest first.
func (s *PostService) ListFeed(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.GetAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return s.expand(ctx, posts)
}

// ListByAuthor returns the posts written by authorID, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	posts, err := s.posts.GetPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts of %s: %w", authorID, err)
	}
	return s.expand(ctx, posts)
}

// ToggleLike adds userID to the post's likes if absent and removes it
// otherwise. It reports whether the user likes the post afterwards.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, *models.PostView, error) {
	var liked bool
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		liked = p.ToggleLike(userID)
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	view, err := s.expandOne(ctx, post)
	if err != nil {
		return false, nil, err
	}
	return liked, view, nil
}

// AddComment appends a comment by userID.
func (s *PostService) AddComment(ctx context.Context, postID, userID, text string) (*models.Comment, error) {
	if err := s.checkCommentText(text); err != nil {
		return nil, err
	}
	var added models.Comment
	_, err := s.mutate(ctx, postID, func(p *models.Post) error {
		added = models.Comment{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Text:      text,
			CreatedAt: s.now(),
		}
		p.Comments = append(p.Comments, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// EditComment replaces the text of a comment owned by userID.
func (s *PostService) EditComment(ctx context.Context, postID, commentID, userID, text string) error {
	_, err := s.mutate(ctx, postID, func(p *models.Post) error {
		c, err := ownedComment(p, commentID, userID)
		if err != nil {
			return err
		}
		// ownership is checked first so a non-owner always gets ErrForbidden
		if err := s.checkCommentText(text); err != nil {
			return err
		}
		c.Text = text
		return nil
	})
	return err
}

// RemoveComment deletes a comment owned by userID and returns the expanded post.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID, userID string) (*models.PostView, error) {
	post, err := s.mutate(ctx, postID, func(p *models.Post) error {
		c, err := ownedComment(p, commentID, userID)
		if err != nil {
			return err
		}
		p.RemoveComment(c.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.expandOne(ctx, post)
}

func ownedComment(p *models.Post, commentID, userID string) (*models.Comment, error) {
	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return nil, ErrCommentNotFound
	}
	c := p.Comment(id)
	if c == nil {
		return nil, ErrCommentNotFound
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *PostService) checkCommentText(text string) error {
	if s.opts.CommentRequireText && text == "" {
		return validationError("Comment text is required")
	}
	if s.opts.CommentMaxLength > 0 && utf8.RuneCountInString(text) > s.opts.CommentMaxLength {
		return validationError(fmt.Sprintf("Comment text must be at most %d characters", s.opts.CommentMaxLength))
	}
	return nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post %s: %w", postID, err)
	}
	return post, nil
}

// mutate runs apply against a fresh copy of the post and writes it back guarded
// by the version stamp, retrying when another writer got there first. Errors
// returned by apply abort without writing.
func (s *PostService) mutate(ctx context.Context, postID string, apply func(*models.Post) error) (*models.Post, error) {
	for attempt := 1; attempt <= s.opts.MaxRetries; attempt++ {
		post, err := s.load(ctx, postID)
		if err != nil {
			return nil, err
		}
		if err := apply(post); err != nil {
			return nil, err
		}

		err = s.posts.ReplacePost(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, repositories.ErrVersionConflict) {
			return nil, fmt.Errorf("save post %s: %w", postID, err)
		}
		s.logger.DebugContext(ctx, "post changed concurrently, retrying", "post_id", postID, "attempt", attempt)
	}
	s.logger.WarnContext(ctx, "giving up on contended post", "post_id", postID, "attempts", s.opts.MaxRetries)
	return nil, ErrConcurrentUpdate
}

func (s *PostService) expandOne(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.expand(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// expand resolves author and commenter references with one user lookup.
func (s *PostService) expand(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}

	users, err := s.users.GetUsersByIDs(ctx, models.ReferencedUserIDs(refs...))
	if err != nil {
		return nil, fmt.Errorf("resolve post references: %w", err)
	}
	userMap := make(map[string]models.UserCompact, len(users))
	for i := range users {
		userMap[users[i].ID] = users[i].ToCompact()
	}

	views := make([]models.PostView, len(posts))
	for i := range posts {
		views[i] = posts[i].Expand(userMap)
	}
	return views, nil
}
