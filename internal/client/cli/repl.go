package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Execute(ctx context.Context, cmd string, args []string) error
	printError(err error)
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, splits it into words and hands
// the first word and the rest to Execute. Command errors are printed and
// the loop carries on. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if err := a.Execute(ctx, parts[0], parts[1:]); err != nil {
			a.printError(err)
		}
	}
}
