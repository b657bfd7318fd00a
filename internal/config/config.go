package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/lims-api/internal/snapshot"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type SnapshotConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	Slot        string `mapstructure:"slot"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	RedisURL    string `mapstructure:"redis_url"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// envOverrides are applied on top of the config file, LIMS_* variables.
type envOverrides struct {
	Port           int    `envconfig:"PORT"`
	SnapshotDriver string `envconfig:"SNAPSHOT_DRIVER"`
	SnapshotPath   string `envconfig:"SNAPSHOT_PATH"`
	SnapshotSlot   string `envconfig:"SNAPSHOT_SLOT"`
	PostgresDSN    string `envconfig:"POSTGRES_DSN"`
	RedisURL       string `envconfig:"REDIS_URL"`
	CatalogFile    string `envconfig:"CATALOG_FILE"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine, the defaults stand on their own.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("lims", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	applyOverrides(&config, env)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)
	viper.SetDefault("snapshot.driver", "file")
	viper.SetDefault("snapshot.path", "data/lims-storage.json")
	viper.SetDefault("snapshot.slot", "lims-storage")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
}

func applyOverrides(config *Config, env envOverrides) {
	if env.Port != 0 {
		config.Server.Port = env.Port
	}
	if env.SnapshotDriver != "" {
		config.Snapshot.Driver = env.SnapshotDriver
	}
	if env.SnapshotPath != "" {
		config.Snapshot.Path = env.SnapshotPath
	}
	if env.SnapshotSlot != "" {
		config.Snapshot.Slot = env.SnapshotSlot
	}
	if env.PostgresDSN != "" {
		config.Snapshot.PostgresDSN = env.PostgresDSN
	}
	if env.RedisURL != "" {
		config.Snapshot.RedisURL = env.RedisURL
	}
	if env.CatalogFile != "" {
		config.Catalog.File = env.CatalogFile
	}
	if env.LogLevel != "" {
		config.Log.Level = env.LogLevel
	}
}

// ToSnapshotConfig converts the snapshot section for the adapter factory.
func (c *SnapshotConfig) ToSnapshotConfig() snapshot.Config {
	return snapshot.Config{
		Driver:      c.Driver,
		Path:        c.Path,
		Slot:        c.Slot,
		PostgresDSN: c.PostgresDSN,
		RedisURL:    c.RedisURL,
	}
}
