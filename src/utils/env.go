package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const ProductionEnv = "production"

func envFilename(goEnv string) string {
	return fmt.Sprintf(".env.%s", goEnv)
}

// InitEnvironmentVariables loads envDir/.env.<goEnv>. Production reads the process
// environment only.
func InitEnvironmentVariables(envDir, goEnv string) error {
	if goEnv == ProductionEnv {
		log.Info("Running in production environment")
		return nil
	}

	envFile := filepath.Join(envDir, envFilename(goEnv))

	// Load the specified .env file
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s file: %w", envFile, err)
	}

	log.Debugf("loaded environment from %s", envFile)

	return nil
}

func GetEnv(key string) (string, error) {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return "", fmt.Errorf("%s not set", key)
	}

	return value, nil
}

func GetEnvOrDefault(key, defaultValue string) string {
	value, err := GetEnv(key)
	if err != nil {
		return defaultValue
	}

	return value
}

func GetEnvInt(key string, defaultValue int) (int, error) {
	value, err := GetEnv(key)
	if err != nil {
		return defaultValue, nil
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("GetEnvInt: invalid %s: %w", key, err)
	}

	return i, nil
}

// GetEnvSeconds reads a whole number of seconds.
func GetEnvSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	value, err := GetEnv(key)
	if err != nil {
		return defaultValue, nil
	}

	s, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("GetEnvSeconds: invalid %s: %w", key, err)
	}

	return time.Duration(s) * time.Second, nil
}
