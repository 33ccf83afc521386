package testsupport

import (
	"os"
	"strconv"
	"testing"

	"workflowsvc/internal/adapters/config"
)

// LoadRedisConfigFromEnv reads the Redis settings for integration tests.
// Tests are skipped when REDIS_HOST is missing. DB defaults to 1 to keep
// test keys away from a development database.
func LoadRedisConfigFromEnv(t *testing.T) config.RedisConfig {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("integration environment missing, set REDIS_HOST to run")
	}

	return config.RedisConfig{
		Host:     host,
		Port:     intValue("REDIS_PORT", 6379),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intValue("REDIS_TEST_DB", 1),
	}
}

func intValue(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
