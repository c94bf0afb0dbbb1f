package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
auth:
  signing_key: "file-key"
  token_ttl: 2h
stats:
  timezone: "Africa/Nairobi"
`)
	v := viper.New()
	if err := Init(v, path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" || cfg.Auth.SigningKey != "file-key" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Stats.Location.String() != "Africa/Nairobi" {
		t.Fatalf("timezone = %v", cfg.Stats.Location)
	}
	if cfg.DBPath != "app.db" || cfg.Ingest.OpenRate != 60 || cfg.Ingest.OpenBurst != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.AMQP.URL != "" || cfg.AMQP.Exchange != "cookstove.events" || cfg.AMQP.DialTimeout != 3*time.Second {
		t.Fatalf("amqp defaults: %+v", cfg.AMQP)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("server defaults: %+v", cfg.Server)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COOKSTOVE_AUTH_SIGNING_KEY", "env-key")
	t.Setenv("COOKSTOVE_DB_PATH", "/tmp/x.db")
	t.Setenv("COOKSTOVE_INGEST_OPEN_BURST", "3")

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.SigningKey != "env-key" || cfg.DBPath != "/tmp/x.db" || cfg.Ingest.OpenBurst != 3 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_Validation(t *testing.T) {
	t.Run("missing signing key", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		if _, err := Load(v); err == nil {
			t.Fatal("expected error without signing key")
		}
	})

	t.Run("bad timezone", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("auth.signing_key", "k")
		v.Set("stats.timezone", "Mars/Olympus")
		if _, err := Load(v); err == nil {
			t.Fatal("expected error for unknown timezone")
		}
	})

	t.Run("non-positive rate", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("auth.signing_key", "k")
		v.Set("ingest.open_rate", 0)
		if _, err := Load(v); err == nil {
			t.Fatal("expected error for zero rate")
		}
	})
}

func TestInit_MalformedFile(t *testing.T) {
	path := writeConfig(t, "port: [unterminated")
	if err := Init(viper.New(), path); err == nil {
		t.Fatal("expected parse error")
	}
}
