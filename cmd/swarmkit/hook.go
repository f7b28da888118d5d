package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/swarmkit/internal/config"
	"github.com/boshu2/swarmkit/internal/guard"
	"github.com/boshu2/swarmkit/internal/logging"
)

var (
	taskCompletedDir string
)

// newGateRunner builds the process runner for the completion gate.
var newGateRunner = func() guard.Runner { return guard.ExecRunner{} }

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Guard hooks invoked by the host",
	Long: `Guard hooks read the host's event JSON on stdin and answer with an exit
code: 0 lets the action proceed, 2 blocks it and the host shows stderr to
the agent. Nothing is printed on approval.

The provisioned .claude/hooks/*.sh wrappers exec these commands.`,
}

var protectFilesCmd = &cobra.Command{
	Use:   "protect-files",
	Short: "PreToolUse guard that blocks edits to protected paths",
	Long: `Read a PreToolUse event from stdin and block the edit when
tool_input.file_path contains a protected pattern:

  /.env  /.env.  /secrets/  /credentials.  /.git/

A missing or unreadable event is allowed.`,
	Args: cobra.NoArgs,
	RunE: runProtectFiles,
}

var taskCompletedCmd = &cobra.Command{
	Use:   "task-completed",
	Short: "TaskCompleted gate that runs the project's test suites",
	Long: `Discard the TaskCompleted event on stdin, then run the test suites the
project declares:

  pyproject.toml, pytest.ini or tests/  ->  python -m pytest -q
  package.json                          ->  npm test --silent

Commands run one at a time; the first failure blocks completion and its
output tail is printed to stderr. A project with neither marker passes.

Each command is bounded by gate.timeout (default 10m, 0 disables).`,
	Args: cobra.NoArgs,
	RunE: runTaskCompleted,
}

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.AddCommand(protectFilesCmd)
	hookCmd.AddCommand(taskCompletedCmd)
	taskCompletedCmd.Flags().StringVar(&taskCompletedDir, "dir", "", "Project directory (default: current directory)")
}

// hookSetup loads config and a file-only logger. A broken config never
// blocks a hook: defaults apply and the problem is logged.
func hookSetup() (*config.Config, *zap.Logger) {
	cfg, err := config.Load(nil)
	if err != nil {
		cfg = config.Default()
	}
	logger := logging.NewHookLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		logger.Warn("config unreadable, using defaults", zap.Error(err))
	}
	return cfg, logger
}

func runProtectFiles(cmd *cobra.Command, args []string) error {
	_, logger := hookSetup()
	defer func() { _ = logger.Sync() }()

	ev := guard.DecodeToolEvent(cmd.InOrStdin())
	verdict := guard.NewPathGuard().CheckEvent(ev)
	if verdict.Allowed {
		logger.Debug("edit allowed",
			zap.String("tool", ev.ToolName),
			zap.String("path", verdict.Path),
		)
		return nil
	}

	logger.Info("edit blocked",
		zap.String("tool", ev.ToolName),
		zap.String("session", ev.SessionID),
		zap.String("path", verdict.Path),
		zap.String("pattern", verdict.Pattern),
	)
	fmt.Fprintln(cmd.ErrOrStderr(), verdict.Message())
	return &exitError{code: exitDenied, err: verdict.Err()}
}

func runTaskCompleted(cmd *cobra.Command, args []string) error {
	_, _ = io.Copy(io.Discard, cmd.InOrStdin())

	cfg, logger := hookSetup()
	defer func() { _ = logger.Sync() }()

	timeout, err := cfg.GateTimeout()
	if err != nil {
		logger.Warn("invalid gate timeout, using default", zap.Error(err))
		timeout = guard.DefaultGateTimeout
	}

	dir := taskCompletedDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := guard.NewCompletionGate(dir,
		guard.WithRunner(newGateRunner()),
		guard.WithTimeout(timeout),
		guard.WithTailChars(cfg.Gate.TailChars),
		guard.WithGateLogger(logger.With(zap.String("dir", dir))),
	)
	res := gate.Run(ctx)
	if res.Approved {
		logger.Debug("completion approved", zap.Int("ran", res.Ran))
		return nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), res.Report())
	return &exitError{code: exitDenied, err: res.Err()}
}
