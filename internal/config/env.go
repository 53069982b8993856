package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first present .env/.env.local file.
// godotenv.Load never overrides variables already set in the process environment.
func loadEnvFile() error {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to parse env file").
				WithContext("path", envPath).
				Build()
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return nil
	}
	return errors.NotFoundError("no .env file found").Build()
}
