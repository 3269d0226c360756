package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Academic struct {
		CurrentPeriod           string `toml:"current_period"`
		DefaultCareerID         int64  `toml:"default_career_id"`
		DefaultSpecializationID int64  `toml:"default_specialization_id"`
		PlaceholderPhone        string `toml:"placeholder_phone"`
	} `toml:"academic"`

	Classroom struct {
		Provision      bool   `toml:"provision"`
		MigrationsDir  string `toml:"migrations_dir"`
		PlaceholderURL string `toml:"placeholder_url"`
	} `toml:"classroom"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyEnvOverrides()

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :5000")
	}

	if config.Academic.CurrentPeriod == "" {
		config.Academic.CurrentPeriod = "2026-I"
	}
	if config.Academic.DefaultCareerID == 0 {
		config.Academic.DefaultCareerID = 1
	}
	if config.Academic.DefaultSpecializationID == 0 {
		config.Academic.DefaultSpecializationID = 1
	}
	if config.Academic.PlaceholderPhone == "" {
		config.Academic.PlaceholderPhone = "Sin teléfono"
	}
	if config.Classroom.PlaceholderURL == "" {
		config.Classroom.PlaceholderURL = "about:blank"
	}

	logger.Debug.Printf("Loaded academic config: %+v", config.Academic)

	return &config, nil
}

// applyEnvOverrides lets deployment environments override the file
// settings. When no explicit DSN is around, one is assembled from the
// conventional DB_* variables.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = ":" + port
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}

	if c.Database.DSN == "" {
		host := envOr("DB_HOST", "localhost")
		user := envOr("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		name := envOr("DB_NAME", "miumc_db")
		c.Database.DSN = fmt.Sprintf(
			"postgres://%s:%s@%s/%s?sslmode=disable",
			user, password, host, name,
		)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
