package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL    string
	MigrationsPath string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	GeminiTimeout        time.Duration

	// Storage
	StoragePath string
	MaxUploadMB int
	WorkerCount int

	// Scheduled jobs
	SuggestionSchedule string
	BriefingSchedule   string
	ScheduleTimezone   string

	// Attendance
	AttendanceWindowDays int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		MigrationsPath:       getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiTimeout:        getEnvAsDurationOrDefault("GEMINI_TIMEOUT", 120*time.Second),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./storage"),
		MaxUploadMB:          getEnvAsIntOrDefault("MAX_UPLOAD_MB", 10),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 3),
		SuggestionSchedule:   getEnvOrDefault("SUGGESTION_SCHEDULE", "0 */6 * * *"),
		BriefingSchedule:     getEnvOrDefault("BRIEFING_SCHEDULE", "0 7 * * *"),
		ScheduleTimezone:     getEnvOrDefault("SCHEDULE_TIMEZONE", "Asia/Kolkata"),
		AttendanceWindowDays: getEnvAsIntOrDefault("ATTENDANCE_WINDOW_DAYS", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves ScheduleTimezone, falling back to UTC for unknown zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
