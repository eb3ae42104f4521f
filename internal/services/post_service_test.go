package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPostService_CreatePost(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")

	post, err := f.post.CreatePost(ctx, alice, "hello", "uploads/posts/1.png")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, "uploads/posts/1.png", post.Image)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Alice", post.Author.Name)

	_, err = f.post.CreatePost(ctx, alice, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPostService_ToggleLikeTwiceRestores(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	post, err := f.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)

	liked, view, err := f.post.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, []string{alice}, view.Likes)

	liked, view, err = f.post.ToggleLike(ctx, post.ID, alice)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, view.Likes)

	_, _, err = f.post.ToggleLike(ctx, primitive.NewObjectID().Hex(), alice)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, _, err = f.post.ToggleLike(ctx, "bogus", alice)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_CommentOwnership(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")
	post, err := f.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)

	comment, err := f.post.AddComment(ctx, post.ID, bob, "hi")
	require.NoError(t, err)
	commentID := comment.ID.Hex()

	err = f.post.EditComment(ctx, post.ID, commentID, alice, "hacked")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.post.RemoveComment(ctx, post.ID, commentID, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := f.post.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "hi", view.Comments[0].Text)
	assert.Equal(t, "Bob", view.Comments[0].User.Name)

	require.NoError(t, f.post.EditComment(ctx, post.ID, commentID, bob, "hello there"))
	view, err = f.post.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello there", view.Comments[0].Text)
	assert.Equal(t, comment.CreatedAt, view.Comments[0].CreatedAt)

	view, err = f.post.RemoveComment(ctx, post.ID, commentID, bob)
	require.NoError(t, err)
	assert.Empty(t, view.Comments)

	err = f.post.EditComment(ctx, post.ID, commentID, bob, "again")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	err = f.post.EditComment(ctx, post.ID, "not-hex", bob, "again")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestPostService_CommentTextRules(t *testing.T) {
	ctx := context.Background()

	lenient := newFixture(t, PostOptions{})
	alice := lenient.register(t, "Alice", "a@x.com")
	post, err := lenient.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)
	_, err = lenient.post.AddComment(ctx, post.ID, alice, "")
	assert.NoError(t, err)

	strict := newFixture(t, PostOptions{CommentRequireText: true, CommentMaxLength: 5})
	alice = strict.register(t, "Alice", "a@x.com")
	post, err = strict.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)

	_, err = strict.post.AddComment(ctx, post.ID, alice, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = strict.post.AddComment(ctx, post.ID, alice, "toolong")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = strict.post.AddComment(ctx, post.ID, alice, "héllo")
	assert.NoError(t, err)
}

func TestPostService_EditCommentChecksOwnershipBeforeText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, PostOptions{CommentRequireText: true, CommentMaxLength: 5})
	alice := f.register(t, "Alice", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")
	post, err := f.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)
	comment, err := f.post.AddComment(ctx, post.ID, bob, "hi")
	require.NoError(t, err)

	err = f.post.EditComment(ctx, post.ID, comment.ID.Hex(), alice, "")
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.post.EditComment(ctx, post.ID, comment.ID.Hex(), alice, "toolong")
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.post.EditComment(ctx, post.ID, primitive.NewObjectID().Hex(), bob, "")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	err = f.post.EditComment(ctx, post.ID, comment.ID.Hex(), bob, "")
	assert.ErrorIs(t, err, ErrValidation)

	view, err := f.post.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", view.Comments[0].Text)
}

func TestPostService_DanglingReferencesExpandToNil(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()
	bob := f.register(t, "Bob", "b@x.com")

	f.posts.Insert(models.Post{
		AuthorID: "deleted-user",
		Content:  "orphan",
		Comments: []models.Comment{
			{ID: primitive.NewObjectID(), UserID: bob, Text: "still here"},
			{ID: primitive.NewObjectID(), UserID: "also-gone", Text: "ghost"},
		},
	})

	feed, err := f.post.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Nil(t, feed[0].Author)
	assert.Equal(t, "Bob", feed[0].Comments[0].User.Name)
	assert.Nil(t, feed[0].Comments[1].User)
}

func TestPostService_ListByAuthor(t *testing.T) {
	f := newFixture(t, PostOptions{})
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	bob := f.register(t, "Bob", "b@x.com")

	for i := 0; i < 3; i++ {
		_, err := f.post.CreatePost(ctx, alice, fmt.Sprintf("alice %d", i), "")
		require.NoError(t, err)
	}
	_, err := f.post.CreatePost(ctx, bob, "bob", "")
	require.NoError(t, err)

	posts, err := f.post.ListByAuthor(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, alice, p.Author.ID)
	}

	none, err := f.post.ListByAuthor(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// contendedPosts lets another writer commit just before each of the first
// `interference` replaces.
type contendedPosts struct {
	*repositories.MemoryPostRepository
	interference int
}

func (r *contendedPosts) ReplacePost(ctx context.Context, post *models.Post) error {
	if r.interference > 0 {
		r.interference--
		other, err := r.MemoryPostRepository.GetPostByID(ctx, post.ID.Hex())
		if err != nil {
			return err
		}
		other.AddLike(fmt.Sprintf("intruder-%d", r.interference))
		if err := r.MemoryPostRepository.ReplacePost(ctx, other); err != nil {
			return err
		}
	}
	return r.MemoryPostRepository.ReplacePost(ctx, post)
}

func TestPostService_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemoryUserRepository()
	repo := &contendedPosts{MemoryPostRepository: repositories.NewMemoryPostRepository()}
	svc := NewPostService(repo, users, PostOptions{MaxRetries: 3}, discardLogger())

	post := &models.Post{AuthorID: "a", Content: "hello"}
	require.NoError(t, repo.CreatePost(ctx, post))

	repo.interference = 2
	liked, view, err := svc.ToggleLike(ctx, post.ID.Hex(), "me")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.ElementsMatch(t, []string{"intruder-1", "intruder-0", "me"}, view.Likes)

	repo.interference = 10
	_, _, err = svc.ToggleLike(ctx, post.ID.Hex(), "me")
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	stored, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, stored.Likes, "me")
}

func TestPostService_ConcurrentMutationsAreNotLost(t *testing.T) {
	f := newFixture(t, PostOptions{MaxRetries: 1000})
	ctx := context.Background()
	alice := f.register(t, "Alice", "a@x.com")
	post, err := f.post.CreatePost(ctx, alice, "hello", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _, err := f.post.ToggleLike(ctx, post.ID, fmt.Sprintf("user-%d", i))
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := f.post.AddComment(ctx, post.ID, alice, strings.Repeat("x", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view, err := f.post.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, view.Likes, n)
	assert.Len(t, view.Comments, n)
}
