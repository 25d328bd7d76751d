package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, StorePostgres, c.StoreBackend)
	assert.Equal(t, "HS256", c.SigningAlgorithm)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 10, c.BcryptCost)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSourcesKeepsDefaults(t *testing.T) {
	c := load(nil, noEnv)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	env := map[string]string{
		"SECRET_KEY":                  "from-env",
		"ALGORITHM":                   "HS512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "15",
		"REFRESH_TOKEN_EXPIRE_DAYS":   "2",
		"STORE_BACKEND":               "redis",
		"REDIS_DB":                    "3",
		"BCRYPT_COST":                 "not-a-number",
	}
	c := load(nil, func(k string) string { return env[k] })

	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, "HS512", c.SigningAlgorithm)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, StoreRedis, c.StoreBackend)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 10, c.BcryptCost, "unparseable value must be ignored")
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	env := map[string]string{"SECRET_KEY": "from-env"}
	c := load([]string{"-s", "from-flag"}, func(k string) string { return env[k] })

	assert.Equal(t, "from-flag", c.SecretKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, want: "secret key is required"},
		{name: "asymmetric alg", mutate: func(c *Config) { c.SigningAlgorithm = "RS256" }, want: "unsupported signing algorithm"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, want: "access token lifetime"},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.RefreshTokenValidityDuration = -time.Hour }, want: "refresh token lifetime"},
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "mysql" }, want: "unknown store backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
