package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Reddit      RedditConfig
	OpenAI      OpenAIConfig
	Store       StoreConfig
	Valkey      ValkeyConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// RedditConfig holds content-API configuration
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Subreddit    string
	PostLimit    int
}

// OpenAIConfig holds text-generation API configuration
type OpenAIConfig struct {
	APIKey string
}

// StoreConfig holds document-store configuration
type StoreConfig struct {
	Region   string
	Endpoint string
	Table    string
}

// ValkeyConfig holds logo-cache configuration. Address may be empty, in
// which case logo lookups run uncached.
type ValkeyConfig struct {
	Address  string
	Password string
	UseTLS   bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", "dev"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
		Reddit: RedditConfig{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			Subreddit:    getEnv("REDDIT_SUBREDDIT", "cscareerquestions"),
			PostLimit:    getEnvInt("REDDIT_POST_LIMIT", 25),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		},
		Store: StoreConfig{
			Region:   getEnv("AWS_REGION", "us-west-2"),
			Endpoint: os.Getenv("AWS_ENDPOINT"),
			Table:    getEnv("DYNAMODB_TABLE", "Documents"),
		},
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			UseTLS:   os.Getenv("VALKEY_TLS") == "true",
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
