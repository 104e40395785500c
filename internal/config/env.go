package config

import (
	"errors"
	"log/slog"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first readable .env/.env.local file. Variables
// already present in the process environment are never overwritten.
func loadEnvFile() error {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", "path", path)
			return nil
		}
	}
	return errors.New("no .env file found")
}
