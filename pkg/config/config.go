package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Assembly AssemblyConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
	AutoMigrate     bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig selects the name-pattern cache backend
type CacheConfig struct {
	Type string // "redis", "memory" or "none"
	TTL  time.Duration
}

// StorageConfig holds storage configuration for the transcript archive
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// KafkaConfig holds event publisher configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// AssemblyConfig holds AssemblyAI credentials. WebhookSecret is the value
// AssemblyAI echoes back in the webhook auth header.
type AssemblyConfig struct {
	APIKey            string
	MaxRetries        int
	WebhookHeaderName string
	WebhookSecret     string
}

// PipelineConfig tunes transcript processing. Decoded from PIPELINE_* variables.
type PipelineConfig struct {
	RemoveFillers             bool    `envconfig:"REMOVE_FILLERS" default:"true"`
	CleanSentenceBoundaries   bool    `envconfig:"CLEAN_SENTENCE_BOUNDARIES" default:"true"`
	HighlightLowConfidence    bool    `envconfig:"HIGHLIGHT_LOW_CONFIDENCE" default:"true"`
	ConfidenceThreshold       float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0.7"`
	MaxMergeGapMs             int64   `envconfig:"MAX_MERGE_GAP_MS" default:"1500"`
	IntroductionWindowMinutes int     `envconfig:"INTRODUCTION_WINDOW_MINUTES" default:"5"`
	LateDetectionPenalty      float64 `envconfig:"LATE_DETECTION_PENALTY" default:"0.9"`
	QualityWarningThreshold   float64 `envconfig:"QUALITY_WARNING_THRESHOLD" default:"0.7"`
	ChunkSeconds              int     `envconfig:"CHUNK_SECONDS" default:"30"`
}

// IntroductionWindow returns the intro window as a duration
func (p PipelineConfig) IntroductionWindow() time.Duration {
	return time.Duration(p.IntroductionWindowMinutes) * time.Minute
}

// ChunkMs returns the fallback chunk size in milliseconds
func (p PipelineConfig) ChunkMs() int64 {
	return int64(p.ChunkSeconds) * 1000
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
			AutoMigrate:     getEnvAsBool("AUTO_MIGRATE", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "transcript_intel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Type: getEnv("CACHE_TYPE", "memory"),
			TTL:  getEnvAsDuration("CACHE_TTL", "10m"),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "transcripts"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getEnv("KAFKA_TOPIC", "speakers.recognized"),
		},
		Assembly: AssemblyConfig{
			APIKey:            getEnv("ASSEMBLYAI_API_KEY", ""),
			MaxRetries:        getEnvAsInt("ASSEMBLYAI_MAX_RETRIES", 3),
			WebhookHeaderName: getEnv("ASSEMBLYAI_WEBHOOK_HEADER", "X-Webhook-Secret"),
			WebhookSecret:     getEnv("ASSEMBLYAI_WEBHOOK_SECRET", ""),
		},
	}

	if err := envconfig.Process("pipeline", &config.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("PIPELINE_CONFIDENCE_THRESHOLD must be within [0,1], got %v", p.ConfidenceThreshold)
	}
	if p.QualityWarningThreshold < 0 || p.QualityWarningThreshold > 1 {
		return fmt.Errorf("PIPELINE_QUALITY_WARNING_THRESHOLD must be within [0,1], got %v", p.QualityWarningThreshold)
	}
	if p.LateDetectionPenalty <= 0 || p.LateDetectionPenalty > 1 {
		return fmt.Errorf("PIPELINE_LATE_DETECTION_PENALTY must be within (0,1], got %v", p.LateDetectionPenalty)
	}
	if p.MaxMergeGapMs < 0 {
		return fmt.Errorf("PIPELINE_MAX_MERGE_GAP_MS must not be negative")
	}
	if p.IntroductionWindowMinutes < 0 {
		return fmt.Errorf("PIPELINE_INTRODUCTION_WINDOW_MINUTES must not be negative")
	}
	if p.ChunkSeconds <= 0 {
		return fmt.Errorf("PIPELINE_CHUNK_SECONDS must be positive")
	}

	switch c.Cache.Type {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("CACHE_TYPE must be one of redis, memory, none; got %q", c.Cache.Type)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
