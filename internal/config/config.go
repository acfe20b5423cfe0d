package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Upstream describes how to reach one remote service.
type Upstream struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Config holds application configuration values.
type Config struct {
	Secret         string
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string

	Patient   Upstream
	Inventory Upstream

	LineConcurrency int

	KafkaBrokers []string
	KafkaTopic   string

	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration

	OperatorsCSV string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := getenv("SECRET", "dev_secret")

	port := getenv("HTTP_PORT", "8082")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8082", port)
		port = "8082"
	}

	driver := strings.ToLower(getenv("DATABASE_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "pgx" {
		log.Printf("unknown DATABASE_DRIVER %q, defaulting to sqlite", driver)
		driver = "sqlite"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if driver == "pgx" {
			dsn = postgresDSN()
		} else {
			dsn = "sales.db"
		}
	}

	connectTimeout := getDuration("UPSTREAM_CONNECT_TIMEOUT", 10*time.Second)
	readTimeout := getDuration("UPSTREAM_READ_TIMEOUT", 30*time.Second)

	concurrency := getInt("LINE_CONCURRENCY", 1)
	if concurrency < 1 {
		concurrency = 1
	}

	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Config{
		Secret:         secret,
		HTTPPort:       port,
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		Patient: Upstream{
			BaseURL:        strings.TrimRight(getenv("PATIENT_SERVICE_URL", "http://localhost:8080"), "/"),
			ConnectTimeout: connectTimeout,
			ReadTimeout:    readTimeout,
		},
		Inventory: Upstream{
			BaseURL:        strings.TrimRight(getenv("INVENTORY_SERVICE_URL", "http://microservicio-gestion-de-inventarios:8081"), "/"),
			ConnectTimeout: connectTimeout,
			ReadTimeout:    readTimeout,
		},
		LineConcurrency:   concurrency,
		KafkaBrokers:      brokers,
		KafkaTopic:        getenv("KAFKA_TOPIC", "sales.events"),
		ReconcileInterval: getDuration("RECONCILE_INTERVAL", 5*time.Minute),
		ReconcileGrace:    getDuration("RECONCILE_GRACE", 10*time.Minute),
		OperatorsCSV:      getenv("OPERATORS_CSV", "assets/operators.csv"),
	}
}

func postgresDSN() string {
	host := getenv("HOST", "localhost")
	user := getenv("USER", "postgres")
	dbPort := getenv("PORT", "5432")
	name := getenv("NAME", "sales")
	password := os.Getenv("PASSWORD")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, dbPort, name)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s value %q, defaulting to %s", key, v, def)
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %d", key, v, def)
		return def
	}
	return n
}
