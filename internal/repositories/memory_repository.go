package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/minisocial/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository is a process-local UserRepository used for development
// and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicateKey
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateKey
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *MemoryUserRepository) GetUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *MemoryUserRepository) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	stored.Name = user.Name
	stored.Bio = user.Bio
	stored.ProfileImage = user.ProfileImage
	stored.UpdatedAt = user.UpdatedAt
	r.users[user.ID] = stored
	return nil
}

// MemoryPostRepository is a process-local PostRepository with the same
// version semantics as the MongoDB implementation.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]models.Post
	now   func() time.Time
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[primitive.ObjectID]models.Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryPostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = primitive.NewObjectID()
	now := r.now()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Version = 0
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	r.posts[post.ID] = clonePost(*post)
	return nil
}

// Insert stores post as-is, keeping its id and timestamps.
func (r *MemoryPostRepository) Insert(post models.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	r.posts[post.ID] = clonePost(post)
}

func (r *MemoryPostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[objID]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r *MemoryPostRepository) GetPostsByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	return r.list(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *MemoryPostRepository) GetAllPosts(_ context.Context) ([]models.Post, error) {
	return r.list(func(*models.Post) bool { return true }), nil
}

func (r *MemoryPostRepository) list(keep func(*models.Post) bool) []models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range r.posts {
		if keep(&p) {
			posts = append(posts, clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.Hex() > posts[j].ID.Hex()
	})
	return posts
}

func (r *MemoryPostRepository) ReplacePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok || stored.Version != post.Version {
		return ErrVersionConflict
	}
	next := clonePost(*post)
	next.Version = post.Version + 1
	next.UpdatedAt = r.now()
	r.posts[post.ID] = next
	*post = clonePost(next)
	return nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]string{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}
