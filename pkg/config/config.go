package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	UploadLocal = "local"
	UploadMinio = "minio"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"5000"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"socialmedia"`
	PostgresURL   string `env:"POSTGRES_CONN_STR"`
	PostStore     string `env:"POST_STORE" envDefault:"mongo"`
	UserStore     string `env:"USER_STORE" envDefault:"mongo"`

	JWTSecret               string   `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	CORSOrigins             []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	FirebaseCredentialsPath string   `env:"FIREBASE_CREDENTIALS_PATH"`

	PostUpdateRetries  int  `env:"POST_UPDATE_RETRIES" envDefault:"5"`
	CommentRequireText bool `env:"COMMENT_REQUIRE_TEXT" envDefault:"false"`
	CommentMaxLength   int  `env:"COMMENT_MAX_LENGTH" envDefault:"0"`

	Upload UploadConfig `envPrefix:"UPLOAD_"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type UploadConfig struct {
	Store    string `env:"STORE" envDefault:"local"`
	Dir      string `env:"DIR" envDefault:"uploads"`
	MaxBytes int64  `env:"MAX_BYTES" envDefault:"5242880"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"uploads"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, assuming environment variables are set.")
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and missing connection settings.
func (c *Config) Validate() error {
	switch c.PostStore {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("POST_STORE must be %q or %q, got %q", StoreMongo, StoreMemory, c.PostStore)
	}
	switch c.UserStore {
	case StoreMongo, StoreMemory:
	case StorePostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	default:
		return fmt.Errorf("USER_STORE must be %q, %q or %q, got %q", StoreMongo, StorePostgres, StoreMemory, c.UserStore)
	}
	switch c.Upload.Store {
	case UploadLocal, UploadMinio:
	default:
		return fmt.Errorf("UPLOAD_STORE must be %q or %q, got %q", UploadLocal, UploadMinio, c.Upload.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

// UsesMongo reports whether any repository lives in MongoDB.
func (c *Config) UsesMongo() bool {
	return c.PostStore == StoreMongo || c.UserStore == StoreMongo
}
