// Package services holds the business rules of the application. Handlers call
// services; services call repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/minisocial/backend/internal/auth"
	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client from the Firebase
// Admin SDK satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	firebase IDTokenVerifier
	logger   *slog.Logger
}

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// WithFirebase enables FirebaseLogin.
func (s *AuthService) WithFirebase(v IDTokenVerifier) *AuthService {
	s.firebase = v
	return s
}

func (s *AuthService) FirebaseEnabled() bool {
	return s.firebase != nil
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, validationError(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	_, err := s.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       primitive.NewObjectID().Hex(),
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Bio:      req.Bio,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			auth.BurnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token, creating the
// local account on first use.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.firebase == nil {
		return nil, ErrUnauthenticated
	}
	token, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.WarnContext(ctx, "firebase token rejected", "error", err)
		return nil, ErrUnauthenticated
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, validationError("Firebase account has no email address")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	name, _ := token.Claims["name"].(string)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	picture, _ := token.Claims["picture"].(string)

	secret, err := auth.RandomPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hashed, err := auth.HashPassword(secret)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user = &models.User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         name,
		Email:        email,
		Password:     hashed,
		ProfileImage: picture,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// created by a parallel login for the same account
		if user, err = s.users.GetUserByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "user registered via firebase", "user_id", user.ID, "firebase_uid", token.UID)
	return s.issue(user)
}

// Authenticate returns the user id carried by a bearer token.
func (s *AuthService) Authenticate(token string) (string, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	return id, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user.ToPublic()}, nil
}
