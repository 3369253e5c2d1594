package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/flagx"
)

// parseFlags populates the CLI-only Config fields from command-line flags.
//
// Supported flags:
//
//	-no-color         disable coloured output
//	-max-upload int   largest file the upload command accepts, bytes
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-no-color", "-max-upload"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)

	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable coloured output")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", cfg.MaxUploadBytes, "largest file upload accepts, bytes")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
