package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv pulls BOOKIFY_* variables from a local .env file, if one exists.
// Missing files are fine; explicit environment always wins.
func LoadDotEnv() {
	_ = godotenv.Load()
}

type ServerConfig struct {
	HTTPAddr   string
	SyncAddr   string
	NotifyAddr string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:   envOr("BOOKIFY_HTTP_ADDR", ":8080"),
		SyncAddr:   envOr("BOOKIFY_SYNC_ADDR", ":7070"),
		NotifyAddr: envOr("BOOKIFY_NOTIFY_ADDR", ":7071"),
	}
}

type SessionConfig struct {
	Secret   string
	Issuer   string
	Duration time.Duration
}

func LoadSessionConfig() SessionConfig {
	secret := os.Getenv("BOOKIFY_SESSION_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := envOr("BOOKIFY_SESSION_ISSUER", "bookify")

	hours := 24 * 7 // a session token carries identity only; keep it long-lived
	if raw := os.Getenv("BOOKIFY_SESSION_TTL_HOURS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			hours = n
		}
	}

	return SessionConfig{
		Secret:   secret,
		Issuer:   issuer,
		Duration: time.Duration(hours) * time.Hour,
	}
}

// BooksAPIBase is the catalog provider endpoint. Point it at a local
// mirror-server for offline work.
func BooksAPIBase() string {
	return envOr("BOOKIFY_BOOKS_API_BASE", "https://www.googleapis.com/books/v1")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
