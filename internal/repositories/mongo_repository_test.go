package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create maps duplicate key", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		err := repo.CreateUser(ctx, &models.User{ID: "u1", Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicateKey)
	})

	mt.Run("create sets timestamps", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{ID: "u1", Email: "a@x.com"}
		require.NoError(mt, repo.CreateUser(ctx, user))
		assert.False(mt, user.CreatedAt.IsZero())
		assert.Equal(mt, user.CreatedAt, user.UpdatedAt)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		ns := mt.DB.Name() + ".users"
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := repo.GetUserByEmail(ctx, "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.ID)
		assert.Equal(mt, "Alice", user.Name)
		assert.Equal(mt, "hash", user.Password)
	})

	mt.Run("get by email not found", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".users", mtest.FirstBatch))

		_, err := repo.GetUserByEmail(ctx, "nobody@x.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("users by ids skips the query for no ids", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)

		users, err := repo.GetUsersByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, users)
	})

	mt.Run("update unknown user", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.UpdateUser(ctx, &models.User{ID: "ghost"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("malformed id is not found", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)

		_, err := repo.GetPostByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create initialises the document", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := &models.Post{AuthorID: "u1", Content: "hello"}
		require.NoError(mt, repo.CreatePost(ctx, post))
		assert.False(mt, post.ID.IsZero())
		assert.Zero(mt, post.Version)
		assert.NotNil(mt, post.Likes)
		assert.NotNil(mt, post.Comments)
	})

	mt.Run("get decodes embedded likes", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".posts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "author_id", Value: "u1"},
			{Key: "content", Value: "hello"},
			{Key: "likes", Value: bson.A{"u2"}},
			{Key: "comments", Value: bson.A{}},
			{Key: "version", Value: int64(3)},
		}))

		post, err := repo.GetPostByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id, post.ID)
		assert.Equal(mt, []string{"u2"}, post.Likes)
		assert.Equal(mt, int64(3), post.Version)
	})

	mt.Run("replace bumps the version", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		post := &models.Post{ID: primitive.NewObjectID(), Version: 2}
		require.NoError(mt, repo.ReplacePost(ctx, post))
		assert.Equal(mt, int64(3), post.Version)
		assert.False(mt, post.UpdatedAt.IsZero())
	})

	mt.Run("replace reports a stale version", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		post := &models.Post{ID: primitive.NewObjectID(), Version: 2}
		err := repo.ReplacePost(ctx, post)
		assert.ErrorIs(mt, err, ErrVersionConflict)
		assert.Equal(mt, int64(2), post.Version)
	})
}
