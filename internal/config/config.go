package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultCloudflareAPI is the production Cloudflare v4 endpoint. Overridable
// for tests and API-compatible gateways.
const DefaultCloudflareAPI = "https://api.cloudflare.com/client/v4"

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment   string
	HTTPPort      string
	DatabasePath  string
	FrontendDir   string
	BaseURL       string
	JWTSecret     string
	CloudflareAPI string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:   getEnv("SF_ENV", "development"),
		HTTPPort:      getEnv("SF_HTTP_PORT", "8080"),
		DatabasePath:  getEnv("SF_DB_PATH", filepath.Join("data", "slotflare.db")),
		FrontendDir:   getEnv("SF_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),
		BaseURL:       getEnv("SF_BASE_URL", "http://localhost:8080"),
		JWTSecret:     getEnv("SF_JWT_SECRET", "slotflare-dev-secret"),
		CloudflareAPI: getEnv("SF_CLOUDFLARE_API", DefaultCloudflareAPI),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
