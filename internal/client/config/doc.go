// Package config loads runtime configuration for the vault CLI.
//
// The CLI opens the same stores as the server, so the store settings come
// from the server configuration loader (defaults, -c file, VAULT_*
// environment, flags). On top of that the CLI reads:
//
//	-no-color         disable coloured output
//	-max-upload int   largest local file the upload command reads, in bytes
package config
