package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
storage:
  driver: postgres
payment:
  slug: botdating
  pro_price: 25000
  timeout: 5s
match:
  search_per_minute: 7
reconcile:
  interval: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != StoragePostgres {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Payment.Slug != "botdating" {
		t.Fatalf("unexpected payment slug: %s", cfg.Payment.Slug)
	}
	if cfg.Payment.ProPrice != 25000 {
		t.Fatalf("unexpected pro price: %d", cfg.Payment.ProPrice)
	}
	if cfg.Payment.Timeout.String() != "5s" {
		t.Fatalf("unexpected payment timeout: %s", cfg.Payment.Timeout)
	}
	if cfg.Match.SearchPerMinute != 7 {
		t.Fatalf("unexpected search rate: %d", cfg.Match.SearchPerMinute)
	}
	if cfg.Reconcile.Interval.String() != "30s" {
		t.Fatalf("unexpected reconcile interval: %s", cfg.Reconcile.Interval)
	}

	if cfg.Payment.ProDurationDays != 15 {
		t.Fatalf("pro_duration_days default should stay 15, got %d", cfg.Payment.ProDurationDays)
	}
	if cfg.Reconcile.BatchSize != 100 {
		t.Fatalf("reconcile batch default should stay 100, got %d", cfg.Reconcile.BatchSize)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Payment.ProPrice != 20000 {
		t.Fatalf("unexpected default pro price: %d", cfg.Payment.ProPrice)
	}
	if cfg.Storage.Driver != StorageFile || cfg.Storage.FilePath != "users.json" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Payment.OrderTTL.String() != "72h0m0s" {
		t.Fatalf("unexpected order ttl: %s", cfg.Payment.OrderTTL)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PRO_PRICE", "15000")
	t.Setenv("PRO_DURATION_DAYS", "30")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("PAKASIR_TIMEOUT", "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Payment.ProPrice != 15000 || cfg.Payment.ProDurationDays != 30 {
		t.Fatalf("unexpected payment overrides: %+v", cfg.Payment)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Fatalf("unexpected storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Payment.Timeout.String() != "3s" {
		t.Fatalf("unexpected timeout: %s", cfg.Payment.Timeout)
	}
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PRO_PRICE", "twenty")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-numeric PRO_PRICE")
	}
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unsupported storage driver")
	}
}

func TestLoadRejectsMissingSecretsInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error when bot token and gateway key are empty in production")
	}

	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("PAKASIR_SLUG", "botdating")
	t.Setenv("PAKASIR_API_KEY", "key")
	if _, err := Load(""); err != nil {
		t.Fatalf("production config with secrets should load: %v", err)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"LOG_LEVEL",
		"LOG_ENCODING",
		"POSTGRES_DSN",
		"POSTGRES_AUTO_MIGRATE",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"STORAGE_DRIVER",
		"STORAGE_FILE_PATH",
		"STORAGE_CACHE_SIZE",
		"BOT_TOKEN",
		"PAKASIR_BASE_URL",
		"PAKASIR_SLUG",
		"PAKASIR_API_KEY",
		"PAKASIR_CALLBACK_URL",
		"PAKASIR_CALLBACK_TOKEN",
		"PAKASIR_TIMEOUT",
		"PRO_PRICE",
		"PRO_DURATION_DAYS",
		"MATCH_SEARCH_PER_MINUTE",
		"MATCH_SEARCH_BURST",
		"RECONCILE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}
