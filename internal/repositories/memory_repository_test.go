package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "1", Name: "Carol", Email: "c@x.com"}))
	require.NoError(t, repo.CreateUser(ctx, &models.User{ID: "2", Name: "Alice", Email: "a@x.com"}))

	err := repo.CreateUser(ctx, &models.User{ID: "3", Name: "Again", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	first, err := repo.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)

	users, err := repo.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Carol", users[1].Name)

	found, err := repo.GetUsersByIDs(ctx, []string{"1", "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateUser(ctx, &models.User{ID: "missing"}), ErrNotFound)
}

func TestMemoryPostRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	for _, offset := range []int{2, 0, 3, 1} {
		repo.Insert(models.Post{
			AuthorID:  "u1",
			Content:   "post",
			CreatedAt: base.Add(time.Duration(offset) * time.Hour),
		})
	}
	repo.Insert(models.Post{AuthorID: "u2", CreatedAt: base.Add(10 * time.Hour)})

	all, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "feed out of order at %d", i)
	}

	mine, err := repo.GetPostsByAuthor(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 4)
}

func TestMemoryPostRepository_ReplaceIsVersionGuarded(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	post := &models.Post{AuthorID: "u1", Content: "hello"}
	require.NoError(t, repo.CreatePost(ctx, post))

	a, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	b, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)

	a.AddLike("x")
	require.NoError(t, repo.ReplacePost(ctx, a))
	assert.Equal(t, int64(1), a.Version)

	b.AddLike("y")
	assert.ErrorIs(t, repo.ReplacePost(ctx, b), ErrVersionConflict)

	stored, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, stored.Likes)
}

func TestMemoryPostRepository_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()
	post := &models.Post{AuthorID: "u1", Likes: []string{"a"}}
	require.NoError(t, repo.CreatePost(ctx, post))

	got, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	got.Likes[0] = "mutated"

	again, err := repo.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Likes)

	_, err = repo.GetPostByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetPostByID(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
