package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the insecure fallback used when JWT_SECRET is not
// set. Kept for zero-config local runs; production deployments must
// override it.
const DefaultJWTSecret = "and0LWludGVybnNoaXAtYXQtaW50cmFrcmFmdA==%"

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Println("⚠️  JWT_SECRET not set, using insecure built-in default")
		jwtSecret = DefaultJWTSecret
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3000"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "gadgetry"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
