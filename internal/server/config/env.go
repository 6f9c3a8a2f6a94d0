package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// local .env file first when one exists. Unset variables leave the current
// values untouched.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	config.EndpointAddrHTTP = getEnv("ADDRESS", config.EndpointAddrHTTP)
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.SecretKey = getEnv("SECRET_KEY", config.SecretKey)
	config.AccessTokenValidityDuration = getEnvDuration("ACCESS_TOKEN_VALIDITY", config.AccessTokenValidityDuration)
	config.RefreshTokenValidityDuration = getEnvDuration("REFRESH_TOKEN_VALIDITY", config.RefreshTokenValidityDuration)
	config.VerificationCodeValidityDuration = getEnvDuration("VERIFICATION_CODE_TTL", config.VerificationCodeValidityDuration)
	config.VerificationMaxRequests = getEnvInt("VERIFICATION_MAX_REQUESTS", config.VerificationMaxRequests)
	config.VerificationWindow = getEnvDuration("VERIFICATION_WINDOW", config.VerificationWindow)
	config.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", config.CleanupInterval)
	config.BcryptCost = getEnvInt("BCRYPT_COST", config.BcryptCost)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
