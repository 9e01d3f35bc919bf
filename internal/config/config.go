package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	MongoURI      string
	MongoDatabase string
	// DatabaseURL selects the PostgreSQL document store when set.
	DatabaseURL   string
	MigrationsDir string
	CORSOrigin    string
	StoreTimeout  time.Duration
	// Per-kind list defaults. The collections have always carried
	// different limits, so they stay independently configurable.
	InputListLimit    int
	AIOutputListLimit int
	StatsDays         int
	TrendWindow       int
}

func Load() Config {
	return Config{
		Addr:              getenv("API_ADDR", ":8000"),
		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getenv("MONGO_DATABASE", "SynapseOS"),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		MigrationsDir:     getenv("SYNAPSE_MIGRATIONS_DIR", "./db/migrations"),
		CORSOrigin:        getenv("SYNAPSE_CORS_ORIGIN", "*"),
		StoreTimeout:      time.Duration(getenvInt("SYNAPSE_STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		InputListLimit:    getenvInt("SYNAPSE_INPUT_LIST_LIMIT", 50),
		AIOutputListLimit: getenvInt("SYNAPSE_AI_OUTPUT_LIST_LIMIT", 10),
		StatsDays:         getenvInt("SYNAPSE_STATS_DAYS", 30),
		TrendWindow:       getenvInt("SYNAPSE_TREND_WINDOW", 7),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
