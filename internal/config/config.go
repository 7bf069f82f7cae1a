package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MySQL holds users, messages, read receipts and notifications
	Database DatabaseConfig `json:"database"`

	// MongoDB is only used when attachments are kept in GridFS
	MongoDB MongoDBConfig `json:"mongodb"`

	// Redis relays real-time events between instances
	Redis RedisConfig `json:"redis"`

	Auth AuthConfig `json:"auth"`

	Attachment AttachmentConfig `json:"attachment"`

	Notification NotificationConfig `json:"notification"`

	Presence PresenceConfig `json:"presence"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	GRPCPort     string `json:"grpc_port"` // health + reflection
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	AllowOrigin  string `json:"allow_origin"`
	Environment  string `json:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	Issuer    string        `json:"issuer"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// AttachmentConfig controls where uploaded message files live
type AttachmentConfig struct {
	Backend     string `json:"backend"` // disk or gridfs
	UploadDir   string `json:"upload_dir"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

// NotificationConfig contains notification system configuration
type NotificationConfig struct {
	Workers           int  `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int  `json:"channel_buffer_size"` // Channel buffer size
	Enabled           bool `json:"enabled"`
}

type PresenceConfig struct {
	// a recipient active within this window gets the message as delivered
	FreshnessWindow time.Duration `json:"freshness_window"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	OutputPath string `json:"output_path"` // stdout or a directory for rotated files
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "5000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			GRPCPort:     getEnv("GRPC_PORT", "7005"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			AllowOrigin:  getEnv("CORS_ORIGIN", "*"),
			Environment:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("MYSQL_HOST", "localhost"),
			Port:         getEnv("MYSQL_PORT", "3306"),
			Username:     getEnv("MYSQL_USERNAME", "taskchat"),
			Password:     getEnv("MYSQL_PASSWORD", "taskchat123"),
			DatabaseName: getEnv("MYSQL_DATABASE", "taskchat"),
			MaxOpenConns: getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 5),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "taskchat"),
			Bucket:   getEnv("MONGO_BUCKET", "message_files"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "taskchat"),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Attachment: AttachmentConfig{
			Backend:     getEnv("ATTACHMENT_BACKEND", "disk"),
			UploadDir:   getEnv("UPLOAD_DIR", "uploads/messages"),
			MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 10),
		},
		Notification: NotificationConfig{
			Workers:           getEnvAsInt("NOTIF_WORKERS", 5),
			ChannelBufferSize: getEnvAsInt("NOTIF_BUFFER", 1000),
			Enabled:           getEnvAsBool("NOTIF_ENABLED", true),
		},
		Presence: PresenceConfig{
			FreshnessWindow: getEnvAsDuration("PRESENCE_WINDOW", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 90),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
		cfg.MongoDB.Database,
	)
}

// MaxUploadBytes is the largest attachment accepted by the upload path.
func (cfg *Config) MaxUploadBytes() int64 {
	if cfg.Attachment.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(cfg.Attachment.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
