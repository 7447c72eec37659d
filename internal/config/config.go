package config

import (
	"os"
	"strconv"
)

// Config holds server configuration loaded from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	JWTSecret string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion string
	S3Bucket  string
	CDNBase   string

	EmailFrom     string
	EmailFromName string
	AppBaseURL    string

	MagicLinkTTLMinutes int

	TracingEnabled  bool
	OTLPEndpoint    string
	TraceSampleRate float64
}

// Load reads configuration from environment variables. godotenv is loaded
// by main before this runs, so .env values are already in the environment.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "server.log"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:  os.Getenv("AWS_BUCKET"),
		CDNBase:   os.Getenv("CDN_BASE_URL"),

		EmailFrom:     getEnv("EMAIL_FROM", "no-reply@codecrafts.app"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Code Crafts"),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:5173"),

		MagicLinkTTLMinutes: getEnvInt("MAGIC_LINK_TTL_MINUTES", 15),

		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
		TraceSampleRate: getEnvFloat("TRACE_SAMPLE_RATE", 1.0),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
