package config

import (
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. Lifetimes use the
// conventional units: access token in minutes, refresh token in days.
// Unparseable numbers are ignored.
func parseEnv(config *Config, getenv func(string) string) {
	setString(&config.AppName, getenv("APP_NAME"))
	setString(&config.EndpointAddrGRPC, getenv("GRPC_ADDR"))
	setString(&config.EndpointAddrHTTP, getenv("HTTP_ADDR"))
	setString(&config.StoreBackend, getenv("STORE_BACKEND"))
	setString(&config.DatabaseDSN, getenv("DATABASE_DSN"))
	setString(&config.SQLitePath, getenv("SQLITE_PATH"))
	setString(&config.RedisAddr, getenv("REDIS_ADDR"))
	setString(&config.RedisPassword, getenv("REDIS_PASSWORD"))
	setString(&config.SecretKey, getenv("SECRET_KEY"))
	setString(&config.SigningAlgorithm, getenv("ALGORITHM"))
	setString(&config.LogLevel, getenv("LOG_LEVEL"))

	if n, ok := envInt(getenv, "REDIS_DB"); ok {
		config.RedisDB = n
	}
	if n, ok := envInt(getenv, "BCRYPT_COST"); ok {
		config.BcryptCost = n
	}
	if n, ok := envInt(getenv, "ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		config.AccessTokenValidityDuration = time.Duration(n) * time.Minute
	}
	if n, ok := envInt(getenv, "REFRESH_TOKEN_EXPIRE_DAYS"); ok {
		config.RefreshTokenValidityDuration = time.Duration(n) * 24 * time.Hour
	}
}

func envInt(getenv func(string) string, key string) (int, bool) {
	v := getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
