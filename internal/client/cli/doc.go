// Package cli provides the vault command-line client.
//
// The CLI runs the vault core in process against the configured stores and
// keeps the logged-in user in the single-slot session store. It runs one
// command given on the command line, or an interactive REPL when none is:
//
//	gvault [flags] <command> [args]
//
// Commands: register, login, logout, whoami, upload, list, ls, dirs, read,
// metadata, delete, publish, unpublish, mkdir, check, status, help, exit.
package cli
