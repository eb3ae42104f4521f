package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/minisocial/backend/internal/handlers"
	"github.com/anonto42/minisocial/backend/internal/logging"
	"github.com/anonto42/minisocial/backend/internal/repositories"
	"github.com/anonto42/minisocial/backend/internal/router"
	"github.com/anonto42/minisocial/backend/internal/uploads"
	"github.com/anonto42/minisocial/backend/pkg/config"
	"github.com/anonto42/minisocial/backend/pkg/firebase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	app := &router.App{
		Config: cfg,
		Logger: logger,
		Checks: map[string]handlers.HealthCheck{},
	}

	if err := initRepositories(ctx, cfg, db, app); err != nil {
		return err
	}

	app.Uploads, err = initUploadStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	// Initialize Firebase
	fbClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase: %w", err)
	}
	if fbClient != nil {
		app.Firebase = fbClient
	}

	e := router.NewServer(app)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func initRepositories(ctx context.Context, cfg *config.Config, db *config.DB, app *router.App) error {
	setupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if db.Mongo != nil {
		app.Checks["mongo"] = func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) }
	}
	if db.Postgres != nil {
		app.Checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	switch cfg.UserStore {
	case config.StoreMongo:
		users := repositories.NewMongoUserRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := users.EnsureIndexes(setupCtx); err != nil {
			return fmt.Errorf("failed to create user indexes: %w", err)
		}
		app.Users = users
	case config.StorePostgres:
		users := repositories.NewPostgresUserRepository(db.Postgres)
		if err := users.Migrate(); err != nil {
			return fmt.Errorf("failed to auto migrate models: %w", err)
		}
		app.Users = users
	default:
		app.Users = repositories.NewMemoryUserRepository()
	}
	slog.Info("User store ready", "store", cfg.UserStore)

	switch cfg.PostStore {
	case config.StoreMongo:
		posts := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := posts.EnsureIndexes(setupCtx); err != nil {
			return fmt.Errorf("failed to create post indexes: %w", err)
		}
		app.Posts = posts
	default:
		app.Posts = repositories.NewMemoryPostRepository()
	}
	slog.Info("Post store ready", "store", cfg.PostStore)
	return nil
}

func initUploadStore(ctx context.Context, cfg *config.Config) (uploads.Store, error) {
	up := cfg.Upload
	if up.Store == config.UploadMinio {
		client, err := uploads.NewMinioClient(up.MinioEndpoint, up.MinioAccessKey, up.MinioSecretKey, up.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		slog.Info("Uploads stored in MinIO", "endpoint", up.MinioEndpoint, "bucket", up.MinioBucket)
		return uploads.NewMinioStore(ctx, client, up.MinioBucket)
	}
	slog.Info("Uploads stored on disk", "dir", up.Dir)
	return uploads.NewLocalStore(up.Dir)
}
