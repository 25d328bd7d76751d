package config

import (
	"flag"
	"io"
	"slices"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var serverFlags = []string{"-a", "-w", "-store", "-d", "-sqlite", "-redis", "-s", "-alg", "-t", "-r", "-cost", "-l"}

// FlagNames returns the command-line flags parseFlags understands, with the
// leading dash. Every one of them takes a value.
func FlagNames() []string {
	return slices.Clone(serverFlags)
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-w string     HTTP bind address (e.g., ":8080")
//	-store string store backend: postgres, sqlite, redis or memory
//	-d string     PostgreSQL DSN
//	-sqlite string SQLite database file
//	-redis string Redis address
//	-s string     JWT HMAC secret key
//	-alg string   JWT signing algorithm
//	-t int        access token validity, minutes
//	-r int        refresh token validity, days
//	-cost int     bcrypt cost
//	-l string     log level
//
// Arguments are filtered through flagx.FilterArgs first so that -c and
// foreign flags do not break parsing. Lifetimes are only touched when their
// flag is present.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.StoreBackend, "store", config.StoreBackend, "store backend (postgres, sqlite, redis, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "sqlite", config.SQLitePath, "sqlite database file")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "alg", config.SigningAlgorithm, "JWT signing algorithm")
	accessMinutes := fs.Int("t", 0, "access token validity (in minutes)")
	refreshDays := fs.Int("r", 0, "refresh token validity (in days)")
	fs.IntVar(&config.BcryptCost, "cost", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshDays) * 24 * time.Hour
		}
	})
}
