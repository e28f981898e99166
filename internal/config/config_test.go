package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "SAHAYAK_TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "SAHAYAK_TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)
			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "42", 10, 42},
		{"uses default for empty", "", 10, 10},
		{"uses default for non-numeric", "abc", 10, 10},
		{"uses default for zero", "0", 5, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SAHAYAK_TEST_INT", tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault("SAHAYAK_TEST_INT", tc.defaultVal))
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	t.Setenv("SAHAYAK_TEST_DURATION", "45s")
	assert.Equal(t, 45*time.Second, getEnvAsDurationOrDefault("SAHAYAK_TEST_DURATION", time.Minute))

	t.Setenv("SAHAYAK_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDurationOrDefault("SAHAYAK_TEST_DURATION", time.Minute))
}

func TestMustGetEnv(t *testing.T) {
	t.Setenv("SAHAYAK_REQUIRED", "")
	assert.Panics(t, func() { mustGetEnv("SAHAYAK_REQUIRED") })

	t.Setenv("SAHAYAK_REQUIRED", "value123")
	assert.Equal(t, "value123", mustGetEnv("SAHAYAK_REQUIRED"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sahayak")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("ATTENDANCE_WINDOW_DAYS", "")
	t.Setenv("SCHEDULE_TIMEZONE", "")

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.GeminiModel)
	assert.Equal(t, 30, cfg.AttendanceWindowDays)
	assert.Equal(t, "Asia/Kolkata", cfg.ScheduleTimezone)
	assert.False(t, cfg.IsProduction())
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{ScheduleTimezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}
