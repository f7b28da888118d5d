package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boshu2/swarmkit/internal/config"
	"github.com/boshu2/swarmkit/internal/logging"
	"github.com/boshu2/swarmkit/internal/provision"
)

var (
	bootstrapDir   string
	bootstrapModel string
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Provision agent-team configuration into a project",
	Long: `Write the agent-team host configuration under .claude/:

  tools/quick-tree.sh                 wraps "swarmkit tool tree"
  tools/git-safe.sh                   wraps "swarmkit tool git"
  settings.opus-swarm.json            model, permissions and hook wiring
  hooks/protect-files.sh              wraps "swarmkit hook protect-files"
  hooks/task-completed.sh             wraps "swarmkit hook task-completed"
  skills/opus-swarm/SKILL.md          team instructions

Existing files are backed up to <file>.bak-<YYYYMMDD-HHMMSS> before being
replaced, so re-running is always safe. Each run is recorded in
.claude/swarmkit/provision.jsonl.

Examples:
  swarmkit bootstrap
  swarmkit bootstrap --dir ../service --model claude-opus-4-6
  swarmkit bootstrap --dry-run`,
	Args: cobra.NoArgs,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().StringVar(&bootstrapDir, "dir", "", "Project directory (default: current directory)")
	bootstrapCmd.Flags().StringVar(&bootstrapModel, "model", "", "Model pinned in settings and instructions")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(&config.Config{Model: bootstrapModel})
	if err != nil {
		return err
	}
	timeout, err := cfg.GateTimeout()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if GetVerbose() {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Stderr: true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	root, err := resolveProjectDir(bootstrapDir)
	if err != nil {
		return err
	}

	report, err := provision.New(provision.Options{
		Root:        root,
		Model:       cfg.Model,
		HookCommand: cfg.HookCommand,
		GateTimeout: timeout,
		DryRun:      GetDryRun(),
		Logger:      logger,
	}).Run()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	logger.Info("bootstrap complete",
		zap.String("run_id", report.RunID),
		zap.Int("artifacts", len(report.Results)),
		zap.Int("backups", len(report.Backups())),
		zap.Bool("dry_run", report.DryRun),
	)

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	printBootstrapSummary(cmd.OutOrStdout(), report)
	return nil
}

// resolveProjectDir returns dir as an absolute path, defaulting to the working directory.
func resolveProjectDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}

var (
	summaryTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4D96FF"))
	summaryCreateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	summaryUpdateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	summaryMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func printBootstrapSummary(w io.Writer, r *provision.Report) {
	title := "swarmkit bootstrap"
	if r.DryRun {
		title += " (dry run, nothing written)"
	}
	fmt.Fprintln(w, summaryTitleStyle.Render(title))
	fmt.Fprintln(w, summaryMutedStyle.Render(fmt.Sprintf("root %s  run %s", r.Root, r.RunStamp)))
	fmt.Fprintln(w)

	for _, d := range r.CreatedDirs {
		fmt.Fprintf(w, "  %s %s/\n", summaryCreateStyle.Render("mkdir "), d)
	}
	for _, res := range r.Results {
		if res.Created {
			fmt.Fprintf(w, "  %s %s\n", summaryCreateStyle.Render("create"), res.RelPath)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", summaryUpdateStyle.Render("update"), res.RelPath)
		if res.BackupPath != "" {
			fmt.Fprintf(w, "         %s\n", summaryMutedStyle.Render("backup "+relTo(r.Root, res.BackupPath)))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Next: merge %s into .claude/settings.json to enable the hooks.\n", provision.SettingsFile)
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
