package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.DBName != "parking" {
		t.Errorf("expected database parking, got %s", cfg.Database.DBName)
	}
	if !cfg.Database.Migrate {
		t.Error("expected migrations to be enabled by default")
	}
	if cfg.Parking.BaseCurrency != "PLN" {
		t.Errorf("expected base currency PLN, got %s", cfg.Parking.BaseCurrency)
	}
	if cfg.Parking.StrictPlates {
		t.Error("expected lenient plate handling by default")
	}
	if cfg.Parking.Location() != time.UTC {
		t.Errorf("expected UTC, got %s", cfg.Parking.Location())
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PARKING_BASE_CURRENCY", "EUR")
	t.Setenv("PARKING_LOCK_WAIT", "500ms")
	t.Setenv("PARKING_DAY_CACHE_TTL", "1m")
	t.Setenv("PARKING_STRICT_PLATES", "true")
	t.Setenv("DB_MIGRATE", "false")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Parking.BaseCurrency != "EUR" {
		t.Errorf("expected EUR, got %s", cfg.Parking.BaseCurrency)
	}
	if cfg.Parking.LockWait != 500*time.Millisecond {
		t.Errorf("expected 500ms lock wait, got %s", cfg.Parking.LockWait)
	}
	if cfg.Parking.DayCacheTTL != time.Minute {
		t.Errorf("expected 1m cache ttl, got %s", cfg.Parking.DayCacheTTL)
	}
	if !cfg.Parking.StrictPlates {
		t.Error("expected strict plates")
	}
	if cfg.Database.Migrate {
		t.Error("expected migrations to be disabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("PARKING_LOCK_TTL", "soon")
	t.Setenv("PARKING_TIMEZONE", "Mars/Olympus")

	cfg := Load()

	if cfg.Redis.DB != 0 {
		t.Errorf("expected default redis db, got %d", cfg.Redis.DB)
	}
	if cfg.Parking.LockTTL != 10*time.Second {
		t.Errorf("expected default lock ttl, got %s", cfg.Parking.LockTTL)
	}
	if cfg.Parking.Location() != time.UTC {
		t.Errorf("expected UTC fallback, got %s", cfg.Parking.Location())
	}
}
