package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"store_backend":                   "redis",
		"secret_key":                      "my_secret_key",
		"algorithm":                       "HS512",
		"access_token_validity_duration":  "15m",
		"refresh_token_validity_duration": "36h",
		"redis_addr":                      "cache:6379",
		"bcrypt_cost":                     11,
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg, []string{"-config", path})

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, StoreRedis, cfg.StoreBackend)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "HS512", cfg.SigningAlgorithm)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 36*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, 11, cfg.BcryptCost)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP, "absent keys keep their value")
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := &Config{SecretKey: "key", AccessTokenValidityDuration: 2 * time.Minute}
		parseJson(cfg, []string{"-s", "other"})

		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", bad}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"secret_key": "from-json", "log_level": "warn"})
	env := map[string]string{"SECRET_KEY": "from-env"}

	cfg := load([]string{"-c", path}, func(k string) string { return env[k] })
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg = load([]string{"-c", path, "-s", "from-flag"}, func(k string) string { return env[k] })
	assert.Equal(t, "from-flag", cfg.SecretKey)
}
