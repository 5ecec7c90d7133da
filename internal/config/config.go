package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` specify the environment variable name.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Store      StoreConfig
	Mongo      MongoConfig
	Postgres   PostgresConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port           string        `envconfig:"HTTP_SERVER_PORT" default:"5000"`
	TimeoutRead    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite   time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle    time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"mongo"`
}

// MongoConfig holds MongoDB connection details.
type MongoConfig struct {
	URI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"MONGO_DATABASE" default:"productdb"`
	Collection string `envconfig:"MONGO_COLLECTION" default:"products"`
}

// PostgresConfig holds PostgreSQL database connection details. The fields
// are only required when the postgres driver is selected.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

func (pc *PostgresConfig) missing() []string {
	var missing []string
	for _, f := range []struct{ key, val string }{
		{"POSTGRES_HOST", pc.Host},
		{"POSTGRES_USER", pc.User},
		{"POSTGRES_PASSWORD", pc.Password},
		{"POSTGRES_DBNAME", pc.DBName},
	} {
		if f.val == "" {
			missing = append(missing, f.key)
		}
	}
	return missing
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if missing := cfg.Postgres.missing(); len(missing) > 0 {
			return nil, fmt.Errorf("postgres driver selected but %s not set", strings.Join(missing, ", "))
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", cfg.Store.Driver)
	}

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}

// Debug reports whether DEBUG lines should be logged.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}
