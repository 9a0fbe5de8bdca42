package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by the storage factory.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Storage configuration
	Storage struct {
		Backend  string
		RedisURL string
		// Channel used to fan storage changes out to every server process.
		RedisChannel string
		Timeout      time.Duration
	}

	// Database configuration, only read by the postgres backend
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
		MaxConns int
		Timeout  time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		TrustedProxies []string
		MaxBodySize    int64
		CookieSecure   bool
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Board settings
	Board struct {
		TimeLayout     string
		WelcomeUser    string
		WelcomeMessage string
		Roster         []string
		MaxUploadSize  int64
	}

	// Project card shown on the index page
	Project struct {
		Name         string
		Description  string
		StartDate    string
		CurrentPhase string
		TeamMembers  int
		Progress     int
		Details      string
	}

	Observability struct {
		TracingEnabled bool
		MetricsEnabled bool
		ServiceName    string
	}

	OpenAPI struct {
		SchemaPath string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		godotenv.Load()
		instance = Load()
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Load reads a fresh Config from the environment without touching the singleton.
func Load() *Config {
	cfg := &Config{}

	cfg.Server.Port = getEnvString("PORT", "8081")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
	cfg.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.Server.Port)

	cfg.Storage.Backend = strings.ToLower(getEnvString("STORAGE_BACKEND", BackendMemory))
	cfg.Storage.RedisURL = getEnvString("REDIS_URL", "localhost:6379")
	cfg.Storage.RedisChannel = getEnvString("REDIS_CHANNEL", "team-dashboard:storage")
	cfg.Storage.Timeout = getEnvDuration("STORAGE_TIMEOUT", 3*time.Second)

	cfg.Database.Host = getEnvString("DB_HOST", "localhost")
	cfg.Database.Port = getEnvString("DB_PORT", "5432")
	cfg.Database.User = getEnvString("DB_USER", "postgres")
	cfg.Database.Password = getEnvString("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnvString("DB_NAME", "team_dashboard")
	cfg.Database.SSLMode = getEnvString("DB_SSL_MODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 20)
	cfg.Database.Timeout = getEnvDuration("DB_TIMEOUT", 5*time.Second)

	cfg.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 20))
	cfg.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 40)
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
	cfg.Security.TrustedProxies = getEnvStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1"})
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 64<<20) // 64MB
	cfg.Security.CookieSecure = getEnvBool("COOKIE_SECURE", false)

	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	cfg.Board.TimeLayout = getEnvString("MESSAGE_TIME_LAYOUT", "2006/1/2 15:04:05")
	cfg.Board.WelcomeUser = getEnvString("WELCOME_USER", "System")
	cfg.Board.WelcomeMessage = getEnvString("WELCOME_MESSAGE", "欢迎来到团队讨论区！请先选择身份后参与讨论。")
	cfg.Board.Roster = getEnvStringSlice("TEAM_ROSTER", []string{"pm:天天", "developer:IEWW", "designer:铭", "tester:帽砸", "tester:南羽"})
	cfg.Board.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", 32<<20) // 32MB per file

	cfg.Project.Name = getEnvString("PROJECT_NAME", "末日求生")
	cfg.Project.Description = getEnvString("PROJECT_DESCRIPTION", "末日背景下的生存冒险游戏")
	cfg.Project.StartDate = getEnvString("PROJECT_START_DATE", "2025.1.31")
	cfg.Project.CurrentPhase = getEnvString("PROJECT_PHASE", "Demo开发阶段")
	cfg.Project.TeamMembers = getEnvInt("PROJECT_TEAM_MEMBERS", 5)
	cfg.Project.Progress = getEnvInt("PROJECT_PROGRESS", 25)
	cfg.Project.Details = getEnvString("PROJECT_DETAILS",
		"一款以末日废土为背景的生存冒险游戏，玩家需要在充满危险的世界中探索、收集资源、建造庇护所，同时对抗各种威胁。")

	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "team-dashboard")

	cfg.OpenAPI.SchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "api/openapi.yaml")

	return cfg
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
