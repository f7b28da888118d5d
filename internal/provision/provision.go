// Package provision lays down the host configuration a project needs to run
// an agent team under swarmkit's guard hooks: settings, hook and tool
// wrapper scripts, and the team instructions. Every write goes through a
// SafeWriter, so re-running never loses what was there before.
package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boshu2/swarmkit/internal/guard"
)

// Layout, relative to the project root.
const (
	ClaudeDir    = ".claude"
	SkillsDir    = ClaudeDir + "/skills/" + SkillName
	AgentsDir    = ClaudeDir + "/agents"
	HooksDir     = ClaudeDir + "/hooks"
	ToolsDir     = ClaudeDir + "/tools"
	StateDir     = ClaudeDir + "/swarmkit"
	SettingsFile = ClaudeDir + "/settings.opus-swarm.json"
	SkillFile    = SkillsDir + "/SKILL.md"
	LedgerFile   = StateDir + "/provision.jsonl"

	QuickTreeScript     = "quick-tree.sh"
	GitSafeScript       = "git-safe.sh"
	ProtectFilesScript  = "protect-files.sh"
	TaskCompletedScript = "task-completed.sh"

	DefaultHookCommand = "swarmkit"
	DefaultModel       = "claude-opus-4-6"

	scriptMode   = os.FileMode(0755)
	documentMode = os.FileMode(0644)
	dirMode      = os.FileMode(0755)
)

// LayoutDirs returns the directories Provisioner ensures, parents first.
func LayoutDirs() []string {
	return []string{ClaudeDir, SkillsDir, AgentsDir, HooksDir, ToolsDir}
}

// ArtifactKind classifies a provisioned file.
type ArtifactKind string

const (
	KindTool         ArtifactKind = "tool"
	KindSettings     ArtifactKind = "settings"
	KindHook         ArtifactKind = "hook"
	KindInstructions ArtifactKind = "instructions"
)

// Artifact is one file the Provisioner writes.
type Artifact struct {
	RelPath string
	Kind    ArtifactKind
	Mode    os.FileMode
	Content []byte
}

// ArtifactResult pairs an artifact with the outcome of writing it.
type ArtifactResult struct {
	Kind    ArtifactKind `json:"kind"`
	RelPath string       `json:"rel_path"`
	WriteResult
}

// Report summarizes a provisioning run.
type Report struct {
	RunID    string `json:"run_id"`
	RunStamp string `json:"run_stamp"`
	Root     string `json:"root"`
	DryRun   bool   `json:"dry_run,omitempty"`
	// CreatedDirs lists layout directories that did not exist before the run.
	CreatedDirs []string         `json:"created_dirs,omitempty"`
	Results     []ArtifactResult `json:"results"`
}

// Backups returns the backup paths created during the run.
func (r *Report) Backups() []string {
	var out []string
	for _, res := range r.Results {
		if res.BackupPath != "" {
			out = append(out, res.BackupPath)
		}
	}
	return out
}

// Options configures a Provisioner.
type Options struct {
	// Root is the project directory. Defaults to the working directory.
	Root string
	// Model is written into the settings and instructions.
	Model string
	// HookCommand is the binary the wrapper scripts exec.
	HookCommand string
	// GateTimeout is the per-command CompletionGate timeout; it sizes the host hook timeout.
	GateTimeout time.Duration
	DryRun      bool
	// Now returns the run time. Defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// Provisioner materializes the host configuration under a project root.
type Provisioner struct {
	opts Options
}

// New creates a Provisioner, filling unset options with defaults.
func New(opts Options) *Provisioner {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.HookCommand == "" {
		opts.HookCommand = DefaultHookCommand
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Provisioner{opts: opts}
}

// Artifacts renders every artifact in write order.
func (p *Provisioner) Artifacts() ([]Artifact, error) {
	quickTree, err := renderScript(scriptSpec{
		Description: "Lists the top level of the working directory.",
		Command:     p.opts.HookCommand,
		Subcommand:  "tool tree",
	})
	if err != nil {
		return nil, err
	}
	gitSafe, err := renderScript(scriptSpec{
		Description: "Runs git, printing stdout only and never failing.",
		Command:     p.opts.HookCommand,
		Subcommand:  "tool git",
		PassArgs:    true,
	})
	if err != nil {
		return nil, err
	}

	settings, err := MarshalSettings(ComposeSettings(SettingsOptions{
		Model:                 p.opts.Model,
		ProtectHookCommand:    "sh " + HooksDir + "/" + ProtectFilesScript,
		CompletionHookCommand: "sh " + HooksDir + "/" + TaskCompletedScript,
		HookTimeout:           hookTimeout(p.opts.GateTimeout),
	}))
	if err != nil {
		return nil, err
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	protect, err := renderScript(scriptSpec{
		Description: "PreToolUse guard: blocks Edit/Write on protected paths (exit 2).",
		Command:     p.opts.HookCommand,
		Subcommand:  "hook protect-files",
	})
	if err != nil {
		return nil, err
	}
	completed, err := renderScript(scriptSpec{
		Description: "TaskCompleted gate: runs the project's tests and blocks completion on failure (exit 2).",
		Command:     p.opts.HookCommand,
		Subcommand:  "hook task-completed",
	})
	if err != nil {
		return nil, err
	}

	skill, err := RenderSkill(p.opts.Model)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{RelPath: ToolsDir + "/" + QuickTreeScript, Kind: KindTool, Mode: scriptMode, Content: quickTree},
		{RelPath: ToolsDir + "/" + GitSafeScript, Kind: KindTool, Mode: scriptMode, Content: gitSafe},
		{RelPath: SettingsFile, Kind: KindSettings, Mode: documentMode, Content: settings},
		{RelPath: HooksDir + "/" + ProtectFilesScript, Kind: KindHook, Mode: scriptMode, Content: protect},
		{RelPath: HooksDir + "/" + TaskCompletedScript, Kind: KindHook, Mode: scriptMode, Content: completed},
		{RelPath: SkillFile, Kind: KindInstructions, Mode: documentMode, Content: skill},
	}, nil
}

// hookTimeout sizes the host-side timeout so every gate command can use its
// full budget. Zero leaves the host default in place.
func hookTimeout(perCommand time.Duration) time.Duration {
	if perCommand <= 0 {
		return 0
	}
	return perCommand * time.Duration(len(guard.DefaultGateCommands()))
}

// Run ensures the layout and writes every artifact. Any filesystem error
// aborts the run; files already written stay written.
func (p *Provisioner) Run() (*Report, error) {
	root := p.opts.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	report := &Report{
		RunID:    uuid.NewString(),
		RunStamp: NewRunStamp(p.opts.Now()),
		Root:     root,
		DryRun:   p.opts.DryRun,
	}
	log := p.opts.Logger.With(zap.String("run_id", report.RunID), zap.String("root", root))

	artifacts, err := p.Artifacts()
	if err != nil {
		return nil, err
	}

	created, err := p.ensureLayout(root)
	if err != nil {
		return nil, err
	}
	report.CreatedDirs = created

	writer, err := NewSafeWriter(report.RunStamp, WithDryRun(p.opts.DryRun), WithWriterLogger(log))
	if err != nil {
		return nil, err
	}

	for _, a := range artifacts {
		res, err := writer.Write(filepath.Join(root, filepath.FromSlash(a.RelPath)), a.Content, a.Mode)
		if err != nil {
			return report, fmt.Errorf("provision %s: %w", a.RelPath, err)
		}
		report.Results = append(report.Results, ArtifactResult{Kind: a.Kind, RelPath: a.RelPath, WriteResult: res})
		log.Debug("provisioned artifact",
			zap.String("path", a.RelPath),
			zap.String("kind", string(a.Kind)),
			zap.Bool("created", res.Created),
			zap.String("backup", res.BackupPath),
			zap.Bool("dry_run", p.opts.DryRun),
		)
	}

	if p.opts.DryRun {
		return report, nil
	}

	ledger := NewLedger(filepath.Join(root, filepath.FromSlash(LedgerFile)))
	if err := ledger.Append(RecordsFromReport(report, p.opts.Now())...); err != nil {
		return report, fmt.Errorf("record provisioning run: %w", err)
	}
	return report, nil
}

// ensureLayout creates the layout directories and returns those that were new.
func (p *Provisioner) ensureLayout(root string) ([]string, error) {
	var created []string
	for _, dir := range LayoutDirs() {
		target := filepath.Join(root, filepath.FromSlash(dir))
		_, statErr := os.Stat(target)
		missing := os.IsNotExist(statErr)
		if missing {
			created = append(created, dir)
		}
		if p.opts.DryRun {
			continue
		}
		if err := os.MkdirAll(target, dirMode); err != nil {
			return created, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return created, nil
}
