package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
)

// Flags lists every flag parseFlags understands.
var Flags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e",
	"-blob", "-blob-path", "-meta", "-meta-path", "-session", "-redis", "-session-file",
	"-thumbs", "-thumb-workers", "-mode", "-log-level", "-health-interval",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g., ":8080")
//	-grpc string           gRPC health endpoint bind address
//	-d string              PostgreSQL DSN
//	-s string              JWT HMAC secret key
//	-t int                 access token validity, minutes
//	-u, -p string          S3 root user and password
//	-b, -g, -e string      S3 bucket, region and base endpoint
//	-blob string           blob backend: s3, local, memory
//	-blob-path string      local blob directory
//	-meta string           metadata index backend: badger, postgres, sqlite
//	-meta-path string      badger directory or sqlite file
//	-session string        session backend: redis, file
//	-redis string          redis URL
//	-session-file string   session file path
//	-thumbs string         thumbnail directory
//	-thumb-workers int     thumbnail worker count
//	-mode string           consistency mode: best-effort, compensating
//	-log-level string      debug, info, warn, error
//	-health-interval dur   store health check interval
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.BlobBackend, "blob", config.BlobBackend, "blob backend (s3, local, memory)")
	fs.StringVar(&config.BlobPath, "blob-path", config.BlobPath, "local blob directory")
	fs.StringVar(&config.MetaBackend, "meta", config.MetaBackend, "metadata index backend (badger, postgres, sqlite)")
	fs.StringVar(&config.MetaPath, "meta-path", config.MetaPath, "metadata index path")
	fs.StringVar(&config.SessionBackend, "session", config.SessionBackend, "session backend (redis, file)")
	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL")
	fs.StringVar(&config.SessionFile, "session-file", config.SessionFile, "session file")
	fs.StringVar(&config.ThumbnailDir, "thumbs", config.ThumbnailDir, "thumbnail directory")
	fs.IntVar(&config.ThumbnailWorkers, "thumb-workers", config.ThumbnailWorkers, "thumbnail workers")
	fs.StringVar(&config.ConsistencyMode, "mode", config.ConsistencyMode, "consistency mode (best-effort, compensating)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.DurationVar(&config.HealthCheckInterval, "health-interval", config.HealthCheckInterval, "store health check interval")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
