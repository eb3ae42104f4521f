package router

import (
	"fmt"
	"log/slog"

	"github.com/anonto42/minisocial/backend/internal/auth"
	"github.com/anonto42/minisocial/backend/internal/handlers"
	"github.com/anonto42/minisocial/backend/internal/logging"
	"github.com/anonto42/minisocial/backend/internal/middleware"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"github.com/anonto42/minisocial/backend/internal/services"
	"github.com/anonto42/minisocial/backend/internal/uploads"
	"github.com/anonto42/minisocial/backend/internal/validators"
	"github.com/anonto42/minisocial/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// App is everything the HTTP layer depends on. It is built once in main and
// passed down explicitly.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Users   repositories.UserRepository
	Posts   repositories.PostRepository
	Uploads uploads.Store

	// Firebase enables POST /api/auth/firebase-login when set.
	Firebase services.IDTokenVerifier
	// Checks are run by GET /health.
	Checks map[string]handlers.HealthCheck
}

// NewServer builds the echo instance with middleware and routes wired.
func NewServer(app *App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(app.Logger)

	SetupMiddleware(e, app)
	SetupRoutes(e, app)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, app *App) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(logging.RequestLogger(app.Logger))
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: app.Config.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	// room for the multipart envelope around a maximum-size image
	limitKB := (app.Config.Upload.MaxBytes + 1<<20) / 1024
	e.Use(eMiddleware.BodyLimit(fmt.Sprintf("%dK", limitKB)))
	app.Logger.Debug("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, app *App) {
	cfg := app.Config

	e.GET("/", handlers.Root)
	e.GET("/health", handlers.NewHealthHandler(app.Checks).Health)
	e.GET("/uploads/*", handlers.NewUploadHandler(app.Uploads).Serve)

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authService := services.NewAuthService(app.Users, tokens, app.Logger)
	if app.Firebase != nil {
		authService.WithFirebase(app.Firebase)
	}
	userService := services.NewUserService(app.Users)
	postService := services.NewPostService(app.Posts, app.Users, services.PostOptions{
		MaxRetries:         cfg.PostUpdateRetries,
		CommentRequireText: cfg.CommentRequireText,
		CommentMaxLength:   cfg.CommentMaxLength,
	}, app.Logger)
	uploader := uploads.NewAdapter(app.Uploads, cfg.Upload.MaxBytes)

	requireAuth := middleware.JWTAuthMiddleware(authService)
	api := e.Group("/api")

	// --- Unprotected routes for authentication ---
	handlers.NewAuthHandler(authService).RegisterAuthRoutes(api.Group("/auth"))
	app.Logger.Debug("Auth routes configured.", "firebase", authService.FirebaseEnabled())

	// User routes
	handlers.NewUserHandler(userService, uploader, app.Logger).RegisterUserRoutes(api.Group("/users"), requireAuth)
	app.Logger.Debug("User routes configured.")

	// Post, feed, like and comment routes share the /posts group
	posts := api.Group("/posts")
	handlers.NewFeedHandler(postService).RegisterFeedRoutes(posts, requireAuth)
	handlers.NewPostHandler(postService, uploader, app.Logger).RegisterPostRoutes(posts, requireAuth)
	handlers.NewLikeHandler(postService).RegisterLikeRoutes(posts, requireAuth)
	handlers.NewCommentHandler(postService).RegisterCommentRoutes(posts, requireAuth)
	app.Logger.Debug("Post routes configured.")

	app.Logger.Info("All routes configured.")
}
