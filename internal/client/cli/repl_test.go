package cli

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeExec struct {
	calls  []string
	errs   []error
	failOn string
}

func (f *fakeExec) Execute(_ context.Context, cmd string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(cmd+" "+strings.Join(args, " ")))
	if cmd == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeExec) printError(err error) { f.errs = append(f.errs, err) }

func silence(t *testing.T) {
	t.Helper()
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"",
		"login",
		"upload   notes.txt  work",
		"read notes.txt",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"help", "login", "upload notes.txt work", "read notes.txt"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls: got %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, exec.calls[i], want[i])
		}
	}
}

func TestRunREPL_ErrorsDoNotStopTheLoop(t *testing.T) {
	silence(t)

	input := strings.NewReader("read x\nlist\nquit\n")
	exec := &fakeExec{failOn: "read"}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(input))

	if len(exec.errs) != 1 {
		t.Fatalf("expected one printed error, got %v", exec.errs)
	}
	if len(exec.calls) != 2 || exec.calls[1] != "list" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_EOF(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
