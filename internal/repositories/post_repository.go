package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/minisocial/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// GetPostsByAuthor and GetAllPosts return posts newest first.
	GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	// ReplacePost stores post only if the stored version still equals
	// post.Version, and bumps the version on success. A stale version yields
	// ErrVersionConflict.
	ReplacePost(ctx context.Context, post *models.Post) error
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes used by the feed queries.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Version = 0
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB. A malformed id is reported
// as ErrNotFound.
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthor retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID})
}

// GetAllPosts retrieves all posts from MongoDB
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ReplacePost rewrites the whole document guarded by its version stamp
func (r *MongoPostRepository) ReplacePost(ctx context.Context, post *models.Post) error {
	filter := bson.M{"_id": post.ID, "version": post.Version}
	if post.Version == 0 {
		// documents written before versioning carry no version field
		filter = bson.M{
			"_id": post.ID,
			"$or": bson.A{
				bson.M{"version": 0},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}

	next := *post
	next.Version = post.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("replace post %s: %w", post.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	*post = next
	return nil
}
