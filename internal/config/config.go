// internal/config/config.go
//
// Process configuration for the Stardust Blast server and CLI.
// Responsibilities:
//   - Load a local `.env` file when present (development convenience).
//   - Read every setting from the environment with a sane default.
//   - Expose board defaults shared by `serve`, `play` and `sim`.
//
// Environment variables:
//   PORT, LOG_LEVEL, LOG_FILE, DB_PATH, APP_ENV, CLIENT_ORIGIN,
//   JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, DAILY_SALT,
//   BOARD_COLS, BOARD_ROWS, GEM_KINDS, MOVES, POINTS_PER_GEM,
//   MAX_CASCADE, STABLE_START.

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds everything read from the environment.
type Config struct {
	Port         string
	LogLevel     zerolog.Level
	LogFile      string // terminal client log destination; empty discards
	DBPath       string
	Production   bool
	ClientOrigin string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	DailySalt      string

	Board Board
}

// Board carries the tunable rules for new sessions.
type Board struct {
	Cols         int
	Rows         int
	Kinds        int
	Moves        int
	PointsPerGem int
	MaxCascade   int
	StableStart  bool
}

// Load reads `.env` (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       lvl,
		LogFile:        os.Getenv("LOG_FILE"),
		DBPath:         getEnv("DB_PATH", "./data/stardust.db"),
		Production:     os.Getenv("APP_ENV") == "production",
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "stardust_token"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		Board: Board{
			Cols:         getInt("BOARD_COLS", 8),
			Rows:         getInt("BOARD_ROWS", 8),
			Kinds:        getInt("GEM_KINDS", 6),
			Moves:        getInt("MOVES", 20),
			PointsPerGem: getInt("POINTS_PER_GEM", 10),
			MaxCascade:   getInt("MAX_CASCADE", 1000),
			StableStart:  getBool("STABLE_START", true),
		},
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}
