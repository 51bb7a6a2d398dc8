// Package config loads radiusd's runtime configuration from the
// environment, the same flat env-var style the ProISP backend this project
// grew out of uses — a handful of required knobs with sane defaults, no
// config file or schema needed.
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-derived setting radiusd needs to start.
type Config struct {
	RadiusAuthPort int
	RadiusAcctPort int
	DashboardPort  int

	DatabasePath string

	// DefaultSecret seeds the shared secret of the first NAS client created
	// on boot when none exists yet, so a fresh install has something to
	// point a test NAS at.
	DefaultSecret string

	AdminUsername string
	AdminPassword string

	JWTSecret      string
	JWTExpireHours int

	LogLevel string

	ShutdownGraceSeconds int

	RedisAddr     string
	RedisPassword string

	DefaultSessionTimeout int
}

// Load reads Config from the environment, applying the defaults spec.md §6
// and its ambient extensions call for.
func Load() *Config {
	return &Config{
		RadiusAuthPort: getEnvInt("RADIUS_AUTH_PORT", 1812),
		RadiusAcctPort: getEnvInt("RADIUS_ACCT_PORT", 1813),
		DashboardPort:  getEnvInt("DASHBOARD_PORT", 8080),

		DatabasePath: getEnv("DATABASE_PATH", "./radiusd.db"),

		DefaultSecret: getEnv("DEFAULT_SECRET", "changeme"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		JWTSecret:      getEnv("JWT_SECRET", "changeme-jwt-secret"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		ShutdownGraceSeconds: getEnvInt("SHUTDOWN_GRACE_SECONDS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		DefaultSessionTimeout: getEnvInt("DEFAULT_SESSION_TIMEOUT", 86400),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
