package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// Root runs the REPL on stdin until the user exits.
func (a *App) Root(ctx context.Context) {

	printlnFn("Welcome to the vault CLI (type 'help' for commands)")

	// picks up a session left by an earlier run
	a.refreshUserName(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
