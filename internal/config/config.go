package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the engine reads from the environment. Loaded
// once at startup; components receive values, never os.Getenv.
type Config struct {
	HTTPPort     string
	KafkaBrokers []string
	AuditTopic   string

	ReturnWindow             time.Duration
	AutoConfirmAfter         time.Duration
	SweepInterval            time.Duration
	SweepOrderTimeout        time.Duration
	CollaboratorTimeout      time.Duration
	AllowCancelWhileShipping bool

	dbHost     string
	dbPort     int
	dbUser     string
	dbPassword string
	dbName     string
}

func loadEnv() {
	exePath, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting working directory:", err)
	}

	possiblePaths := []string{
		filepath.Join(exePath, ".env"),
		filepath.Join(exePath, "..", ".env"),
		filepath.Join(exePath, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded environment variables from %s", envPath)
			return
		}
	}

	log.Println("No .env file found, relying on process environment")
}

func Load() *Config {
	loadEnv()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		HTTPPort:     getEnv("HTTP_PORT", "9000"),
		KafkaBrokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
		AuditTopic:   getEnv("KAFKA_AUDIT_TOPIC", "lifecycle_audit"),

		ReturnWindow:             getDuration("RETURN_WINDOW", 48*time.Hour),
		AutoConfirmAfter:         getDuration("AUTO_CONFIRM_AFTER", 24*time.Hour),
		SweepInterval:            getDuration("SWEEP_INTERVAL", time.Hour),
		SweepOrderTimeout:        getDuration("SWEEP_ORDER_TIMEOUT", 10*time.Second),
		CollaboratorTimeout:      getDuration("COLLABORATOR_TIMEOUT", 5*time.Second),
		AllowCancelWhileShipping: getEnv("ALLOW_CANCEL_WHILE_SHIPPING", "false") == "true",

		dbHost:     getEnv("DB_HOST", "localhost"),
		dbPort:     port,
		dbUser:     getEnv("POSTGRES_USER", "postgres"),
		dbPassword: getEnv("POSTGRES_PASSWORD", ""),
		dbName:     getEnv("POSTGRES_DB", "lifecycle"),
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.dbHost, c.dbPort, c.dbUser, c.dbPassword, c.dbName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
