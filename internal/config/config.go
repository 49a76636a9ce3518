package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	DBDriver      string // sqlite | pgx
	DBDSN         string
	LogFile       string
	RedisURL      string
	SessionTTL    time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
	SeedDemo      bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
	case "postgres", "pgx":
		driver = "pgx"
	default:
		log.Printf("[warn] unknown DB_DRIVER %q, using sqlite", driver)
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "storefront.db"
	} // sqlite file in project root
	logFile, ok := os.LookupEnv("LOG_FILE")
	if !ok {
		logFile = "./storefront.log"
	}

	cfg := Config{
		Port:          port,
		DBDriver:      driver,
		DBDSN:         dsn,
		LogFile:       logFile,
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionTTL:    durationEnv("SESSION_TTL", 7*24*time.Hour),
		BcryptCost:    intEnv("BCRYPT_COST", 12),
		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedDemo:      boolEnv("SEED_DEMO", false),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s LOG_FILE=%s REDIS=%t SESSION_TTL=%s SEED_DEMO=%t",
		cfg.Port, cfg.DBDriver, cfg.LogFile, cfg.RedisURL != "", cfg.SessionTTL, cfg.SeedDemo)
	return cfg
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("[warn] invalid %s=%q, using %s", key, raw, def)
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("[warn] invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}

func boolEnv(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("[warn] invalid %s=%q, using %t", key, raw, def)
		return def
	}
	return b
}
