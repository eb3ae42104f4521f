package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/anonto42/minisocial/backend/internal/auth"
	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	users *repositories.MemoryUserRepository
	posts *repositories.MemoryPostRepository
	auth  *AuthService
	user  *UserService
	post  *PostService
}

func newFixture(t *testing.T, opts PostOptions) *fixture {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	posts := repositories.NewMemoryPostRepository()
	return &fixture{
		users: users,
		posts: posts,
		auth:  NewAuthService(users, auth.NewTokenManager("test-secret"), discardLogger()),
		user:  NewUserService(users),
		post:  NewPostService(posts, users, opts, discardLogger()),
	}
}

func (f *fixture) register(t *testing.T, name, email string) string {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "pw-" + name,
	})
	require.NoError(t, err)
	return resp.User.ID
}
