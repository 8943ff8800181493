package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Storage
	StorageDriver         string // "local" or "supabase"
	StoragePath           string // local driver: root directory for public files
	SupabaseURL           string
	SupabaseKey           string
	SupabaseStorageBucket string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// .env is optional; deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		StorageDriver:         getEnv("STORAGE_DRIVER", "local"),
		StoragePath:           getEnv("STORAGE_PATH", "storage/public"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseKey:           getEnv("SUPABASE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "recipe-images"),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StorageDriver != "local" && c.StorageDriver != "supabase" {
		return fmt.Errorf("STORAGE_DRIVER must be \"local\" or \"supabase\", got %q", c.StorageDriver)
	}
	if c.StorageDriver == "supabase" {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase storage driver")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY is required for the supabase storage driver")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
