package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations are strings such as
// "90s" (or integer nanoseconds in JSON). Omitted fields keep their
// previous value.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	BlobBackend                 string         `json:"blob_backend" yaml:"blob_backend"`
	BlobPath                    string         `json:"blob_path" yaml:"blob_path"`
	MetaBackend                 string         `json:"meta_backend" yaml:"meta_backend"`
	MetaPath                    string         `json:"meta_path" yaml:"meta_path"`
	SessionBackend              string         `json:"session_backend" yaml:"session_backend"`
	RedisURL                    string         `json:"redis_url" yaml:"redis_url"`
	SessionFile                 string         `json:"session_file" yaml:"session_file"`
	ThumbnailDir                string         `json:"thumbnail_dir" yaml:"thumbnail_dir"`
	ThumbnailWorkers            int            `json:"thumbnail_workers" yaml:"thumbnail_workers"`
	ThumbnailQueueSize          int            `json:"thumbnail_queue_size" yaml:"thumbnail_queue_size"`
	ConsistencyMode             string         `json:"consistency_mode" yaml:"consistency_mode"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	HealthCheckInterval         timex.Duration `json:"health_check_interval" yaml:"health_check_interval"`
}

// parseFile overlays the file named by -c/-config, if any. The format
// follows the extension: .yaml/.yml is YAML, anything else JSON. Unreadable
// or malformed files panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(config)
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return fc, nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.BlobBackend, fc.BlobBackend)
	setString(&c.BlobPath, fc.BlobPath)
	setString(&c.MetaBackend, fc.MetaBackend)
	setString(&c.MetaPath, fc.MetaPath)
	setString(&c.SessionBackend, fc.SessionBackend)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.SessionFile, fc.SessionFile)
	setString(&c.ThumbnailDir, fc.ThumbnailDir)
	if fc.ThumbnailWorkers > 0 {
		c.ThumbnailWorkers = fc.ThumbnailWorkers
	}
	if fc.ThumbnailQueueSize > 0 {
		c.ThumbnailQueueSize = fc.ThumbnailQueueSize
	}
	setString(&c.ConsistencyMode, fc.ConsistencyMode)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.HealthCheckInterval.Duration > 0 {
		c.HealthCheckInterval = fc.HealthCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
