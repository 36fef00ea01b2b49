package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	Driver     string
	URL        string
	Retries    int
	RetryDelay time.Duration
}

type Canvas struct {
	Width      int
	Height     int
	Background string
	ExportDir  string
}

type Config struct {
	Database   Database
	Canvas     Canvas
	HTTPAddr   string
	JWTSecret  string
	CORSOrigin string
	LogLevel   string
}

// Load reads a .env file if one exists and builds the configuration from the environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (Config, bool) {
	found := godotenv.Load(files...) == nil
	return FromEnv(), found
}

func FromEnv() Config {
	driver := normalizeDriver(env("DB_DRIVER", ""))
	return Config{
		Database: Database{
			Driver:     driver,
			URL:        databaseURL(driver),
			Retries:    envInt("DB_CONNECT_RETRIES", 5),
			RetryDelay: envDuration("DB_RETRY_DELAY", 2*time.Second),
		},
		Canvas: Canvas{
			Width:      envInt("CANVAS_WIDTH", 800),
			Height:     envInt("CANVAS_HEIGHT", 600),
			Background: env("CANVAS_BACKGROUND", "#ffffff"),
			ExportDir:  env("EXPORT_DIR", "."),
		},
		HTTPAddr:   env("HTTP_ADDR", ":8080"),
		JWTSecret:  env("JWT_SECRET", ""),
		CORSOrigin: env("CORS_ORIGIN", ""),
		LogLevel:   env("LOG_LEVEL", "info"),
	}
}

// databaseURL prefers DATABASE_URL and otherwise assembles a postgres URL from the
// discrete connection variables.
func databaseURL(driver string) string {
	if url := env("DATABASE_URL", ""); url != "" {
		return url
	}
	switch driver {
	case "postgres":
		host := env("host", "")
		if host == "" {
			return ""
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			env("user", ""), env("password", ""), host, env("port", "5432"), env("dbname", ""), env("sslmode", "require"))
	case "sqlite":
		return "notes.db"
	}
	return ""
}

// normalizeDriver folds driver aliases onto the names the rest of the module uses.
func normalizeDriver(driver string) string {
	switch d := strings.ToLower(driver); d {
	case "postgresql":
		return "postgres"
	case "sqlite3":
		return "sqlite"
	default:
		return d
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(env(key, ""))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(env(key, ""))
	if err != nil {
		return def
	}
	return v
}
