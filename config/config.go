package config

import (
	"errors"
	"log"
	"net/url"
	"strings"

	"discord-lists/models"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// LoadConfig loads configuration from, in order of increasing precedence:
//  1. built-in defaults
//  2. config.yaml in configDir (or the working directory when configDir is empty)
//  3. environment variables, with '.' in keys mapped to '_' (bot.token -> BOT_TOKEN)
//
// A .env file in the working directory is loaded into the environment first.
func LoadConfig(configDir string) (*models.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping.")
	}

	v := viper.New()
	setDefaults(v)

	if configDir == "" {
		configDir = "."
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, oops.In("config").With("config_dir", configDir).Wrapf(err, "parse config file")
		}
		log.Printf("No config.yaml in %s, using environment variables and defaults.", configDir)
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "unmarshal config")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.guild_id", "")
	v.SetDefault("bot.admin_channel_id", "")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "data/lists.db")
	v.SetDefault("links.base_url", "https://memex.social/c/")
	v.SetDefault("grpc.address", ":50051")
	v.SetDefault("grpc.max_connections", 64)
	v.SetDefault("grpc.timeout_seconds", 10)
	v.SetDefault("scheduler.audit_spec", "@hourly")
	v.SetDefault("log.mode", "development")
}

// Validate checks the values that cannot be fixed by a default.
func Validate(cfg *models.Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return oops.In("config").With("driver", cfg.Database.Driver).Errorf("unsupported database driver")
	}
	if cfg.Database.DSN == "" {
		return oops.In("config").Errorf("database.dsn is required")
	}

	u, err := url.Parse(cfg.Links.BaseURL)
	if err != nil {
		return oops.In("config").With("base_url", cfg.Links.BaseURL).Wrapf(err, "parse links.base_url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return oops.In("config").With("base_url", cfg.Links.BaseURL).Errorf("links.base_url must be an absolute http(s) URL")
	}
	return nil
}
