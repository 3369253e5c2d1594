package config

import (
	sc "github.com/dmitrijs2005/gophvault/internal/server/config"
)

// DefaultMaxUploadBytes matches the HTTP API body limit.
const DefaultMaxUploadBytes = 32 << 20

// Config holds runtime settings for the vault CLI.
//
// Fields:
//   - Server: the store settings, shared with the server and loaded the same way.
//   - NoColor: disable coloured output.
//   - MaxUploadBytes: largest local file the upload command reads.
type Config struct {
	Server         *sc.Config
	NoColor        bool
	MaxUploadBytes int64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.NoColor = false
	c.MaxUploadBytes = DefaultMaxUploadBytes
}

// LoadConfig loads the server settings (defaults, file, env, flags) and then
// the CLI-only flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.Server = sc.LoadConfig()
	parseFlags(cfg)
	return cfg
}

// ValuedFlags lists every flag that takes a value, so the command router can
// skip flags and their values when looking for the command word.
func ValuedFlags() []string {
	flags := append([]string{}, sc.Flags...)
	return append(flags, "-c", "-config", "--config", "-max-upload")
}
