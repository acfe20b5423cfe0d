package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"SECRET", "HTTP_PORT", "DATABASE_DRIVER", "DATABASE_DSN",
		"PATIENT_SERVICE_URL", "INVENTORY_SERVICE_URL",
		"UPSTREAM_CONNECT_TIMEOUT", "UPSTREAM_READ_TIMEOUT",
		"LINE_CONCURRENCY", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"RECONCILE_INTERVAL", "RECONCILE_GRACE", "OPERATORS_CSV",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "8082" || cfg.DatabaseDriver != "sqlite" || cfg.DatabaseDSN != "sales.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Patient.BaseURL != "http://localhost:8080" {
		t.Errorf("patient url = %q", cfg.Patient.BaseURL)
	}
	if cfg.Inventory.ConnectTimeout != 10*time.Second || cfg.Inventory.ReadTimeout != 30*time.Second {
		t.Errorf("inventory timeouts = %+v", cfg.Inventory)
	}
	if cfg.LineConcurrency != 1 || len(cfg.KafkaBrokers) != 0 || cfg.KafkaTopic != "sales.events" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("HOST", "db")
	t.Setenv("USER", "sales")
	t.Setenv("PORT", "5433")
	t.Setenv("NAME", "ledger")
	t.Setenv("PASSWORD", "pw")
	t.Setenv("PATIENT_SERVICE_URL", "http://patients:9000/")
	t.Setenv("UPSTREAM_READ_TIMEOUT", "2s")
	t.Setenv("UPSTREAM_CONNECT_TIMEOUT", "bogus")
	t.Setenv("LINE_CONCURRENCY", "4")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()
	if cfg.HTTPPort != "8082" {
		t.Errorf("port = %q", cfg.HTTPPort)
	}
	if cfg.DatabaseDSN != "postgres://sales:pw@db:5433/ledger?sslmode=disable" {
		t.Errorf("dsn = %q", cfg.DatabaseDSN)
	}
	if cfg.Patient.BaseURL != "http://patients:9000" {
		t.Errorf("patient url = %q", cfg.Patient.BaseURL)
	}
	if cfg.Patient.ReadTimeout != 2*time.Second || cfg.Patient.ConnectTimeout != 10*time.Second {
		t.Errorf("timeouts = %+v", cfg.Patient)
	}
	if cfg.LineConcurrency != 4 {
		t.Errorf("concurrency = %d", cfg.LineConcurrency)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
}
