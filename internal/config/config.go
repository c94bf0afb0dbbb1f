// Package config loads service settings from configs/config.yml, the
// environment (COOKSTOVE_ prefix) and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "COOKSTOVE"

type Config struct {
	Port   string
	DBPath string
	Log    LogConfig
	Auth   AuthConfig
	Stats  StatsConfig
	Ingest IngestConfig
	AMQP   AMQPConfig
	Server ServerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
	BcryptCost int
}

type StatsConfig struct {
	Location *time.Location
}

// IngestConfig limits the open ingestion route per stove.
type IngestConfig struct {
	OpenRate  float64 // requests per minute
	OpenBurst int
}

type AMQPConfig struct {
	URL         string
	Exchange    string
	DialTimeout time.Duration
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("stats.timezone", "UTC")
	v.SetDefault("ingest.open_rate", 60)
	v.SetDefault("ingest.open_burst", 10)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "cookstove.events")
	v.SetDefault("amqp.dial_timeout", 3*time.Second)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Init points v at cfgFile, or at config.yml under ./configs and ., and
// enables environment overrides. A missing config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads the settings from v and validates them.
func Load(v *viper.Viper) (Config, error) {
	tz := v.GetString("stats.timezone")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("stats.timezone %q: %w", tz, err)
	}

	cfg := Config{
		Port:   v.GetString("port"),
		DBPath: v.GetString("db.path"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Auth: AuthConfig{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			BcryptCost: v.GetInt("auth.bcrypt_cost"),
		},
		Stats: StatsConfig{Location: loc},
		Ingest: IngestConfig{
			OpenRate:  v.GetFloat64("ingest.open_rate"),
			OpenBurst: v.GetInt("ingest.open_burst"),
		},
		AMQP: AMQPConfig{
			URL:         v.GetString("amqp.url"),
			Exchange:    v.GetString("amqp.exchange"),
			DialTimeout: v.GetDuration("amqp.dial_timeout"),
		},
		Server: ServerConfig{
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("server.shutdown_timeout"),
		},
	}

	if cfg.Auth.SigningKey == "" {
		return Config{}, errors.New("auth.signing_key is required")
	}
	if cfg.Ingest.OpenRate <= 0 || cfg.Ingest.OpenBurst <= 0 {
		return Config{}, errors.New("ingest.open_rate and ingest.open_burst must be positive")
	}
	return cfg, nil
}
