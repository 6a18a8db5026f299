package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env style files into the process environment. Variables that are
// already set are never overwritten, and missing files are not an error.
func LoadEnv(files ...string) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load(files...)
}

// GetEnv returns the value of key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses key as an integer, returning fallback when it is unset.
func GetEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// Required returns an error naming the first key whose value is empty.
func Required(pairs ...[2]string) error {
	for _, p := range pairs {
		if p[1] == "" {
			return fmt.Errorf("%s is required", p[0])
		}
	}
	return nil
}
