package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	UploadDir          string
	DataDir            string
	PublicBaseURL      string
	DefaultConcurrency int
}

// MaxConcurrency caps per-request upload parallelism; the UI slider offers
// 1-64 and anything outside that range is clamped.
const MaxConcurrency = 64

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		DefaultConcurrency: getEnvInt("DEFAULT_CONCURRENCY", 4),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
