package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/fatih/color"
)

// ErrUsage is returned when a command gets the wrong number of arguments.
var ErrUsage = errors.New("usage")

type command struct {
	args    string
	summary string
	min     int
	max     int
	run     func(a *App, ctx context.Context, args []string) error
	// remote commands only query the running server.
	remote bool
}

var commands = map[string]command{
	"register":  {summary: "create an account", run: (*App).Register},
	"login":     {summary: "log in and keep the session", run: (*App).Login},
	"logout":    {summary: "end the session", run: (*App).Logout},
	"whoami":    {summary: "show the logged-in user", run: (*App).WhoAmI},
	"upload":    {args: "<path> [directory]", summary: "upload a local file", min: 1, max: 2, run: (*App).Upload},
	"list":      {summary: "list every file you can see", run: (*App).List},
	"ls":        {args: "[directory]", summary: "list files in a directory", max: 1, run: (*App).ListDirectory},
	"dirs":      {summary: "list your directories", run: (*App).Directories},
	"read":      {args: "<name>", summary: "print a file", min: 1, max: 1, run: (*App).Read},
	"metadata":  {args: "<name>", summary: "show file metadata", min: 1, max: 1, run: (*App).Metadata},
	"delete":    {args: "<name>", summary: "delete a file", min: 1, max: 1, run: (*App).Delete},
	"publish":   {args: "<name>", summary: "make a file public", min: 1, max: 1, run: (*App).Publish},
	"unpublish": {args: "<name>", summary: "make a file private", min: 1, max: 1, run: (*App).Unpublish},
	"mkdir":     {args: "<name> [parent]", summary: "create a directory", min: 1, max: 2, run: (*App).Mkdir},
	"check":     {summary: "compare your records with the metadata index", run: (*App).Check},
	"status":    {summary: "ask the running server how it and its stores are", run: (*App).Status, remote: true},
}

// Execute runs one command.
func (a *App) Execute(ctx context.Context, name string, args []string) error {
	if name == "help" {
		a.printHelp()
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (type 'help' for commands)", name)
	}
	if len(args) < cmd.min || len(args) > cmd.max {
		return fmt.Errorf("%w: %s %s", ErrUsage, name, cmd.args)
	}
	return cmd.run(a, ctx, args)
}

func (a *App) printHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range names {
		cmd := commands[name]
		usage := strings.TrimSpace(name + " " + cmd.args)
		fmt.Fprintf(a.out, "  %-28s %s\n", usage, cmd.summary)
	}
	fmt.Fprintf(a.out, "  %-28s %s\n", "exit", "leave the REPL")
}

var errorColor = color.New(color.FgRed)

func (a *App) printError(err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, common.ErrNoSession):
		msg += " (log in first)"
	case errors.Is(err, common.ErrInconsistent):
		msg += " (run 'check' to see what is out of sync)"
	}
	errorColor.Fprintln(a.out, "error:", msg)
}
