// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the console reads from the environment.
type Config struct {
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":5200"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ConsoleToken   string   `env:"CONSOLE_TOKEN"`
	LogDebug       bool     `env:"LOG_DEBUG" envDefault:"false"`

	// Local key-value storage (the device's persisted progress)
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"console.db"`

	CatalogPath string `env:"CATALOG_PATH"`

	// Synthetic competitors merged into the local leaderboard view; 0 disables them
	AmbientCompetitors int `env:"AMBIENT_COMPETITORS" envDefault:"4"`

	Mesh MeshConfig
}

// MeshConfig selects and configures the shared leaderboard document backend.
type MeshConfig struct {
	Backend         string        `env:"MESH_BACKEND" envDefault:"none"` // http | r2 | none
	URL             string        `env:"MESH_URL"`
	ObjectKey       string        `env:"MESH_OBJECT_KEY" envDefault:"mesh/commanders.json"`
	SyncInterval    time.Duration `env:"MESH_SYNC_INTERVAL" envDefault:"20s"`
	AmbientInterval time.Duration `env:"AMBIENT_INTERVAL" envDefault:"45s"` // 0 disables recruit arrivals
	Timeout         time.Duration `env:"MESH_TIMEOUT" envDefault:"10s"`

	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	Endpoint        string `env:"R2_ENDPOINT"`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse builds a Config from the current environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	for i, origin := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	switch c.Mesh.Backend {
	case "none":
	case "http":
		if c.Mesh.URL == "" {
			return fmt.Errorf("MESH_URL is required when MESH_BACKEND=http")
		}
	case "r2":
		if c.Mesh.Bucket == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when MESH_BACKEND=r2")
		}
		if c.Mesh.AccountID == "" && c.Mesh.Endpoint == "" {
			return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID or R2_ENDPOINT is required when MESH_BACKEND=r2")
		}
	default:
		return fmt.Errorf("MESH_BACKEND must be http, r2 or none, got %q", c.Mesh.Backend)
	}

	if c.AmbientCompetitors < 0 {
		return fmt.Errorf("AMBIENT_COMPETITORS must not be negative")
	}
	if c.Mesh.SyncInterval <= 0 {
		return fmt.Errorf("MESH_SYNC_INTERVAL must be positive")
	}
	if c.Mesh.AmbientInterval < 0 {
		return fmt.Errorf("AMBIENT_INTERVAL must not be negative")
	}
	return nil
}

// R2Endpoint returns the S3-compatible endpoint for the configured account.
func (m MeshConfig) R2Endpoint() string {
	if m.Endpoint != "" {
		return m.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", m.AccountID)
}
