// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github-popularity/internal/model"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr            string        `mapstructure:"HTTP_ADDR"`
	StoreDriver         string        `mapstructure:"STORE_DRIVER"`
	DBURL               string        `mapstructure:"DB_URL"`
	SQLitePath          string        `mapstructure:"SQLITE_PATH"`
	MigrationsPath      string        `mapstructure:"MIGRATIONS_PATH"`
	GithubBaseURL       string        `mapstructure:"GITHUB_BASE_URL"`
	GithubToken         string        `mapstructure:"GITHUB_TOKEN"`
	SearchLanguage      string        `mapstructure:"GITHUB_SEARCH_LANGUAGE"`
	SearchCreatedDate   string        `mapstructure:"GITHUB_SEARCH_CREATED_DATE"`
	DataFetchEnabled    bool          `mapstructure:"GITHUB_DATA_FETCH_ENABLED"`
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`

	// Parsed from SearchLanguage and SearchCreatedDate. Zero when the raw value is invalid.
	IngestionLanguage model.Language `mapstructure:"-"`
	IngestionSince    time.Time      `mapstructure:"-"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("DB_URL", "")
	viper.SetDefault("SQLITE_PATH", "github_popularity.db")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("GITHUB_BASE_URL", "https://api.github.com/")
	viper.SetDefault("GITHUB_TOKEN", "unauthorized")
	viper.SetDefault("GITHUB_SEARCH_LANGUAGE", string(model.LanguageJava))
	viper.SetDefault("GITHUB_SEARCH_CREATED_DATE", "2023-01-01")
	viper.SetDefault("GITHUB_DATA_FETCH_ENABLED", true)
	viper.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBURL == "" {
			return nil, errors.New("DB_URL is a required configuration field for the postgres store")
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is a required configuration field for the sqlite store")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverSQLite, cfg.StoreDriver)
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return nil, errors.New("SHUTDOWN_GRACE_PERIOD must be positive")
	}

	// An unusable search language or date only switches ingestion off.
	if lang, ok := model.ParseLanguage(cfg.SearchLanguage); ok {
		cfg.IngestionLanguage = lang
	}
	if since, err := time.Parse(time.DateOnly, cfg.SearchCreatedDate); err == nil {
		cfg.IngestionSince = since
	}

	return &cfg, nil
}

// IngestionEnabled reports whether the background ingestion should run:
// fetching is switched on and both the search language and date are valid.
func (c *Config) IngestionEnabled() bool {
	return c.DataFetchEnabled && c.IngestionLanguage != "" && !c.IngestionSince.IsZero()
}
