package guard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// GateBanner opens every denial report.
	GateBanner = "TaskCompleted gate failed. Fix tests before completing the task."

	// DefaultTailChars bounds each captured stream in the denial report.
	DefaultTailChars = 4000

	// DefaultGateTimeout bounds a single verification command. Zero disables it.
	DefaultGateTimeout = 10 * time.Minute
)

// GateCommand is a verification command and the markers that make it applicable.
// The command is enqueued when any marker exists under the working directory.
type GateCommand struct {
	Args    []string
	Markers []string
}

// DefaultGateCommands returns the built-in marker table in evaluation order.
func DefaultGateCommands() []GateCommand {
	return []GateCommand{
		{
			Args:    []string{"python", "-m", "pytest", "-q"},
			Markers: []string{"pyproject.toml", "pytest.ini", "tests"},
		},
		{
			Args:    []string{"npm", "test", "--silent"},
			Markers: []string{"package.json"},
		},
	}
}

// GateResult is the terminal state of a CompletionGate run.
type GateResult struct {
	Approved bool
	// Planned is the number of commands enqueued after marker discovery.
	Planned int
	// Ran is the number of commands actually executed.
	Ran int
	// Failed is the first failing command, nil on approval.
	Failed    *CommandResult
	TailChars int
	Timeout   time.Duration
}

// Err returns ErrGateFailed wrapped with the failing command, or nil.
func (r GateResult) Err() error {
	if r.Approved || r.Failed == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrGateFailed, r.Failed.CommandLine())
}

// Report renders the stderr text for a denied completion.
func (r GateResult) Report() string {
	if r.Approved || r.Failed == nil {
		return ""
	}
	tail := r.TailChars
	if tail <= 0 {
		tail = DefaultTailChars
	}

	stderr := r.Failed.Stderr
	switch {
	case r.Failed.TimedOut:
		stderr = appendNote(stderr, fmt.Sprintf("command timed out after %s", r.Timeout))
	case r.Failed.Err != nil:
		stderr = appendNote(stderr, r.Failed.Err.Error())
	}

	var b strings.Builder
	b.WriteString(GateBanner)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Command: %s\n", r.Failed.CommandLine())
	fmt.Fprintf(&b, "\nSTDOUT:\n%s\n", Tail(r.Failed.Stdout, tail))
	fmt.Fprintf(&b, "\nSTDERR:\n%s\n", Tail(stderr, tail))
	return b.String()
}

func appendNote(s, note string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s + note
	}
	return s + "\n" + note
}

// Tail returns the last n characters of s without splitting a rune.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// CompletionGate runs local test suites before a task may be marked complete.
type CompletionGate struct {
	dir       string
	commands  []GateCommand
	runner    Runner
	timeout   time.Duration
	tailChars int
	logger    *zap.Logger
}

// CompletionGateOption configures a CompletionGate.
type CompletionGateOption func(*CompletionGate)

// WithRunner replaces the process runner.
func WithRunner(r Runner) CompletionGateOption {
	return func(g *CompletionGate) {
		g.runner = r
	}
}

// WithGateCommands replaces the marker table.
func WithGateCommands(cmds ...GateCommand) CompletionGateOption {
	return func(g *CompletionGate) {
		g.commands = append([]GateCommand(nil), cmds...)
	}
}

// WithTimeout bounds each command. Zero or negative disables the bound.
func WithTimeout(d time.Duration) CompletionGateOption {
	return func(g *CompletionGate) {
		g.timeout = d
	}
}

// WithTailChars sets how many trailing characters of each stream are reported.
func WithTailChars(n int) CompletionGateOption {
	return func(g *CompletionGate) {
		if n > 0 {
			g.tailChars = n
		}
	}
}

// WithGateLogger sets the logger. The default discards everything.
func WithGateLogger(l *zap.Logger) CompletionGateOption {
	return func(g *CompletionGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewCompletionGate creates a gate rooted at dir.
func NewCompletionGate(dir string, opts ...CompletionGateOption) *CompletionGate {
	g := &CompletionGate{
		dir:       dir,
		commands:  DefaultGateCommands(),
		runner:    ExecRunner{},
		timeout:   DefaultGateTimeout,
		tailChars: DefaultTailChars,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Plan returns the commands whose markers exist, in table order.
func (g *CompletionGate) Plan() []GateCommand {
	var planned []GateCommand
	for _, c := range g.commands {
		if g.anyMarkerExists(c.Markers) {
			planned = append(planned, c)
		}
	}
	return planned
}

func (g *CompletionGate) anyMarkerExists(markers []string) bool {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(g.dir, m)); err == nil {
			return true
		}
	}
	return false
}

// Run executes the planned commands sequentially and stops at the first failure.
// With nothing planned it approves without spawning any process.
func (g *CompletionGate) Run(ctx context.Context) GateResult {
	planned := g.Plan()
	res := GateResult{
		Approved:  true,
		Planned:   len(planned),
		TailChars: g.tailChars,
		Timeout:   g.timeout,
	}
	if len(planned) == 0 {
		g.logger.Debug("no project markers, approving", zap.String("dir", g.dir))
		return res
	}

	for _, c := range planned {
		cr := g.runOne(ctx, c.Args)
		res.Ran++
		if !cr.Succeeded() {
			g.logger.Info("gate command failed",
				zap.Strings("args", cr.Args),
				zap.Int("exit_code", cr.ExitCode),
				zap.Bool("timed_out", cr.TimedOut),
			)
			res.Approved = false
			res.Failed = &cr
			return res
		}
		g.logger.Debug("gate command passed", zap.Strings("args", cr.Args))
	}
	return res
}

func (g *CompletionGate) runOne(ctx context.Context, args []string) CommandResult {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.runner.Run(ctx, g.dir, args)
}
