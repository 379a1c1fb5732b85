package config // package config loads application configuration from environment variables

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets are required; everything else has a
// default that suits local development.
type Config struct {
	Env            string `env:"APP_ENV" envDefault:"dev"`           // application environment (dev/test/prod)
	Port           string `env:"APP_PORT" envDefault:"3001"`         // HTTP port to listen on
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`        // zerolog level name
	DBDriver       string `env:"DB_DRIVER" envDefault:"mysql"`       // mysql or sqlite
	DBUser         string `env:"DB_USER"`                            // database username (mysql)
	DBPass         string `env:"DB_PASS"`                            // database password (empty allowed)
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`     // database host address (mysql)
	DBPort         string `env:"DB_PORT" envDefault:"3306"`          // database port number (mysql)
	DBName         string `env:"DB_NAME" envDefault:"films"`         // database name (mysql)
	DBPath         string `env:"DB_PATH" envDefault:"films.db"`      // database file (sqlite)
	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`       // secret used to sign JWTs
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"`
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"7"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`
	PageSize       int    `env:"PAGE_SIZE" envDefault:"10"` // elements per listing page
}

// Load reads an optional .env file and then parses the process environment
// into a Config.  A missing required variable or an invalid value aborts the
// program with a fatal log line.
func Load() Config {
	_ = godotenv.Load() // best-effort
	cfg, err := Parse()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// Parse builds a Config from the current environment and validates it.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "mysql":
		if cfg.DBUser == "" {
			return Config{}, fmt.Errorf("DB_USER is required for the mysql driver")
		}
	case "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if cfg.AccessTTLMin < 1 || cfg.RefreshTTLDays < 1 {
		return Config{}, fmt.Errorf("token TTLs must be positive")
	}
	return cfg, nil
}
