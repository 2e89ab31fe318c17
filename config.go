package quizgame

import (
	"os"
	"strconv"
	"strings"
)

// Session backends
const (
	SessionBackendFilesystem = "filesystem"
	SessionBackendRedis      = "redis"
	// SessionBackendCookie keeps the game in the cookie itself. Concurrent
	// requests of one session can lose an update with it, see lockGame.
	SessionBackendCookie = "cookie"
)

// DefaultSessionSecret is only meant for local development
const DefaultSessionSecret = "quiz-dev-session-secret"

// Config holds the settings shared by the commands
type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	SessionSecret  string
	SessionBackend string // filesystem|redis|cookie
	SessionDir     string // filesystem backend, empty means os.TempDir()
	SessionMaxAge  int    // seconds

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string
	PageSize    int
	Verbose     bool

	OpenAIAPIKey string
}

// ConfigFromEnv reads the configuration from environment variables
func ConfigFromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":" + envOr("PORT", "8180")
	}
	return Config{
		HTTPAddr:       addr,
		DBDriver:       envOr("DB_DRIVER", DriverSQLite3),
		DBDSN:          envOr("DB_DSN", ""),
		SessionSecret:  envOr("SESSION_SECRET", DefaultSessionSecret),
		SessionBackend: envOr("SESSION_BACKEND", SessionBackendFilesystem),
		SessionDir:     os.Getenv("SESSION_DIR"),
		SessionMaxAge:  envInt("SESSION_MAX_AGE", 86400*7),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		CORSOrigins:    csvOr("CORS_ORIGINS", ""),
		PageSize:       envInt("PAGE_SIZE", 10),
		Verbose:        envBool("VERBOSE", false),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
