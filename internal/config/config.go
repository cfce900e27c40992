// Package config reads server settings from flags, falling back to CHESS_*
// environment variables and then to defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr           string
	Origins        []string
	Store          string // "memory" or a badger directory
	AIDelay        time.Duration
	GameTTL        time.Duration // idle games older than this are dropped
	StrictCastling bool
	LogLevel       log.Level
}

// InMemory reports whether results live only as long as the process.
func (c Config) InMemory() bool {
	return c.Store == "" || c.Store == "memory"
}

// Load parses args (without the program name).
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)

	envDelay, err := getenvDuration("CHESS_AI_DELAY", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	envTTL, err := getenvDuration("CHESS_GAME_TTL", 2*time.Hour)
	if err != nil {
		return Config{}, err
	}

	addr := fs.String("addr", getenv("CHESS_ADDR", ":3000"), "listen address")
	origins := fs.String("origins", getenv("CHESS_ORIGINS", "http://localhost:5173"), "comma-separated allowed browser origins")
	store := fs.String("store", getenv("CHESS_STORE", "memory"), `results store: "memory" or a directory`)
	aiDelay := fs.Duration("ai-delay", envDelay, "pause before the computer replies")
	ttl := fs.Duration("game-ttl", envTTL, "drop games idle for longer than this")
	strict := fs.Bool("strict-castling", getenb("CHESS_STRICT_CASTLING", true), "forbid castling through an attacked square")
	level := fs.String("log-level", getenv("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *aiDelay < 0 {
		return Config{}, fmt.Errorf("ai-delay: negative duration %s", *aiDelay)
	}
	if *ttl <= 0 {
		return Config{}, fmt.Errorf("game-ttl: must be positive, got %s", *ttl)
	}
	lvl, err := parseLevel(*level)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Addr:           *addr,
		Origins:        splitCSV(*origins),
		Store:          strings.TrimSpace(*store),
		AIDelay:        *aiDelay,
		GameTTL:        *ttl,
		StrictCastling: *strict,
		LogLevel:       lvl,
	}, nil
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q; valid: trace, debug, info, warn, error", s)
}

func splitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
