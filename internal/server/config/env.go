package config

import (
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the server reads, e.g.
// VAULT_DATABASE_DSN.
const EnvPrefix = "VAULT"

// parseEnv overlays values set in the environment. Keys match the file
// config keys.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("endpoint_addr_http", &config.EndpointAddrHTTP)
	str("endpoint_addr_grpc", &config.EndpointAddrGRPC)
	str("database_dsn", &config.DatabaseDSN)
	str("secret_key", &config.SecretKey)
	str("s3_root_user", &config.S3RootUser)
	str("s3_root_password", &config.S3RootPassword)
	str("s3_bucket", &config.S3Bucket)
	str("s3_region", &config.S3Region)
	str("s3_base_endpoint", &config.S3BaseEndpoint)
	str("blob_backend", &config.BlobBackend)
	str("blob_path", &config.BlobPath)
	str("meta_backend", &config.MetaBackend)
	str("meta_path", &config.MetaPath)
	str("session_backend", &config.SessionBackend)
	str("redis_url", &config.RedisURL)
	str("session_file", &config.SessionFile)
	str("thumbnail_dir", &config.ThumbnailDir)
	str("consistency_mode", &config.ConsistencyMode)
	str("log_level", &config.LogLevel)

	if v.IsSet("access_token_validity_duration") {
		config.AccessTokenValidityDuration = v.GetDuration("access_token_validity_duration")
	}
	if v.IsSet("health_check_interval") {
		config.HealthCheckInterval = v.GetDuration("health_check_interval")
	}
	if v.IsSet("thumbnail_workers") {
		config.ThumbnailWorkers = v.GetInt("thumbnail_workers")
	}
	if v.IsSet("thumbnail_queue_size") {
		config.ThumbnailQueueSize = v.GetInt("thumbnail_queue_size")
	}
}
