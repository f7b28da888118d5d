package guard

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process is killed, e.g. when a test runner leaves children behind.
const waitDelay = 5 * time.Second

// CommandResult captures one verification command execution.
type CommandResult struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is set when the command could not be started or was killed.
	Err      error
	TimedOut bool
}

// Succeeded reports whether the command ran and exited zero.
func (r CommandResult) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// CommandLine is the argument vector joined by spaces.
func (r CommandResult) CommandLine() string {
	return strings.Join(r.Args, " ")
}

// Runner executes a command synchronously and captures both streams.
type Runner interface {
	Run(ctx context.Context, dir string, args []string) CommandResult
}

// ExecRunner runs commands with os/exec. Arguments are passed as a vector,
// never through a shell.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, args []string) CommandResult {
	res := CommandResult{Args: append([]string(nil), args...)}
	if len(args) == 0 {
		res.ExitCode = -1
		res.Err = errors.New("empty command")
		return res
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		return res
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = exitCodeOf(err)
		res.Err = ctxErr
		res.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
		return res
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res
	}
	res.ExitCode = -1
	res.Err = err
	return res
}

func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return -1
}
