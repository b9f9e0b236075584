package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	Domain      string

	MongoURI    string
	MongoDB     string
	StoreDriver string

	RedisAddress     string
	RedisPassword    string
	ReportLimitQueue string
	ReportDailyLimit int

	JWTSecret string

	GoogleMapsAPIKey string
	OpenAIAPIKey     string
	OpenAIModel      string
	ExternalTimeout  time.Duration
	GeocodeCacheTTL  time.Duration

	BoundaryCheck bool
	BoundaryFile  string
	CORSOrigins   []string
}

// Load reads configuration from the environment, after pulling in a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("GO_ENV", "development"),
		Domain:      getEnv("DOMAIN", ""),

		MongoURI:    getEnv("MONGODB_URI", ""),
		MongoDB:     getEnv("MONGODB_DB", "civicsync"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),

		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		ReportLimitQueue: getEnv("REDIS_QUEUE_FOR_REPORT_LIMIT", "report_limit"),
		ReportDailyLimit: getEnvAsInt("REPORT_DAILY_LIMIT", 20),

		JWTSecret: getEnv("JWT_SECRET", ""),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		ExternalTimeout:  getEnvAsDuration("EXTERNAL_TIMEOUT", 5*time.Second),
		GeocodeCacheTTL:  getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),

		BoundaryCheck: getEnvAsBool("BOUNDARY_CHECK", false),
		BoundaryFile:  getEnv("BOUNDARY_GEOJSON", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("please define the MONGODB_URI environment variable")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
