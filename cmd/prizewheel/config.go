package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// config is the server configuration after flags and environment are merged.
// Flags win over environment variables, which win over defaults.
type config struct {
	Port           int
	DBPath         string
	AdminPassword  string
	MaxAttempts    int
	CatalogPath    string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	AppURL         string
	NoAnimate      bool
	NoKeyboard     bool
	ShowVersion    bool
}

const usage = `prizewheel - Prize wheel outcome server

Usage:
  prizewheel [options]

Options:
  -port int         HTTP server port (default 8000, env PORT)
  -db string        SQLite database path (default "prizewheel.db", env DB_PATH)
  -adminpw str      Admin password (auto-generated if not set, env ADMIN_PASSWORD)
  -max-attempts n   Spins per player (default 2, env MAX_ATTEMPTS)
  -catalog path     Prize catalog YAML (built-in catalog if not set, env CATALOG_PATH)
  -loglevel str     Log level: debug, info, warn, error (default "info", env LOG_LEVEL;
                    DEBUG=true forces debug)
  -logformat str    Log format: text, json (default "text")
  -origins list     Comma-separated CORS origins (default "*", env ALLOWED_ORIGINS)
  -app-url url      Mini-app URL shown as QR code in admin (env APP_URL)
  -noanimate        Skip the startup animation
  -nokeyboard       Disable keyboard shortcuts
  -version          Show version and exit
  -help             Show this help message

Keyboard Shortcuts (when enabled):
  a              Open admin page in browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  prizewheel                                  # Port 8000, prizewheel.db, 2 spins each
  prizewheel -max-attempts 3                  # Three spins per player
  prizewheel -catalog prizes.yaml             # Custom prize list
  prizewheel -app-url https://t.me/bot/wheel  # QR code for the Telegram mini-app
  PORT=80 DB_PATH=/data/wheel.db prizewheel   # Container style

`

// parseConfig reads args and the environment through getenv
func parseConfig(args []string, getenv func(string) string, stderr io.Writer) (*config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	port, err := strconv.Atoi(env("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("PORT must be a number: %w", err)
	}
	maxAttempts, err := strconv.Atoi(env("MAX_ATTEMPTS", "2"))
	if err != nil {
		return nil, fmt.Errorf("MAX_ATTEMPTS must be a number: %w", err)
	}
	defaultLevel := env("LOG_LEVEL", "info")
	if strings.EqualFold(getenv("DEBUG"), "true") {
		defaultLevel = "debug"
	}

	cfg := &config{}
	var origins string

	fs := flag.NewFlagSet("prizewheel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.IntVar(&cfg.Port, "port", port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", env("DB_PATH", "prizewheel.db"), "SQLite database path")
	fs.StringVar(&cfg.AdminPassword, "adminpw", getenv("ADMIN_PASSWORD"), "Admin password")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", maxAttempts, "Spins per player")
	fs.StringVar(&cfg.CatalogPath, "catalog", getenv("CATALOG_PATH"), "Prize catalog YAML")
	fs.StringVar(&cfg.LogLevel, "loglevel", defaultLevel, "Log level")
	fs.StringVar(&cfg.LogFormat, "logformat", "text", "Log format")
	fs.StringVar(&origins, "origins", env("ALLOWED_ORIGINS", "*"), "CORS origins")
	fs.StringVar(&cfg.AppURL, "app-url", getenv("APP_URL"), "Mini-app URL")
	fs.BoolVar(&cfg.NoAnimate, "noanimate", false, "Skip the startup animation")
	fs.BoolVar(&cfg.NoKeyboard, "nokeyboard", false, "Disable keyboard shortcuts")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}
