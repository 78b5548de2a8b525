package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Session.ClientBuffer != 64 {
		t.Errorf("client buffer = %d, want 64", cfg.Session.ClientBuffer)
	}
	if cfg.Session.ConnectionTTL != 2*time.Minute {
		t.Errorf("connection ttl = %v, want 2m", cfg.Session.ConnectionTTL)
	}
	if cfg.RabbitMQ.Enabled || cfg.Mongo.Enabled {
		t.Error("broker and audit store should default to disabled")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
http:
  port: 9000
session:
  client_buffer: 128
rabbitmq:
  enabled: true
  uri: amqp://broker:5672/
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.Session.ClientBuffer != 128 {
		t.Errorf("client buffer = %d, want 128", cfg.Session.ClientBuffer)
	}
	if !cfg.RabbitMQ.Enabled || cfg.RabbitMQ.URI != "amqp://broker:5672/" {
		t.Errorf("rabbitmq = %+v", cfg.RabbitMQ)
	}

	// Untouched keys keep their defaults.
	if cfg.RateLimiter.MaxBurst != 20 {
		t.Errorf("max burst = %d, want default 20", cfg.RateLimiter.MaxBurst)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
