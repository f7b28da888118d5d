package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/swarmkit/internal/config"
)

var (
	configShow bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View swarmkit configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SWARMKIT_*)
  3. Project config (.swarmkit/config.yaml)
  4. Home config (~/.swarmkit/config.yaml)
  5. Defaults

Environment variables:
  SWARMKIT_CONFIG          - Explicit config file path (overrides default project config location)
  SWARMKIT_MODEL           - Model written into provisioned settings (default: claude-opus-4-6)
  SWARMKIT_HOOK_COMMAND    - Binary the provisioned scripts exec (default: swarmkit)
  SWARMKIT_LOG_LEVEL       - debug, info, warn, error
  SWARMKIT_LOG_FILE        - Log file; hooks log nowhere without it
  SWARMKIT_LOG_FORMAT      - console or json
  SWARMKIT_GATE_TIMEOUT    - Per-command test timeout (e.g. 10m, 0 disables)
  SWARMKIT_GATE_TAIL_CHARS - Output characters kept per stream in gate reports

Examples:
  swarmkit config --show           # Show resolved configuration
  swarmkit config --show -o json   # Output as JSON`,
	RunE: runConfig,
}

var configEnvVars = []string{
	"SWARMKIT_CONFIG",
	"SWARMKIT_MODEL",
	"SWARMKIT_HOOK_COMMAND",
	"SWARMKIT_LOG_LEVEL",
	"SWARMKIT_LOG_FILE",
	"SWARMKIT_LOG_FORMAT",
	"SWARMKIT_GATE_TIMEOUT",
	"SWARMKIT_GATE_TAIL_CHARS",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		// Show help if no flags
		return cmd.Help()
	}

	resolved := config.Resolve("")
	out := cmd.OutOrStdout()

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, "swarmkit Configuration")
	fmt.Fprintln(out, "======================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Config files:")
	if home, err := os.UserHomeDir(); err == nil {
		printConfigFile(cmd, "Home:   ", filepath.Join(home, ".swarmkit", "config.yaml"))
	}
	project := strings.TrimSpace(os.Getenv("SWARMKIT_CONFIG"))
	if project == "" {
		cwd, _ := os.Getwd()
		project = filepath.Join(cwd, ".swarmkit", "config.yaml")
	}
	printConfigFile(cmd, "Project:", project)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Resolved values:")
	rows := []struct {
		key string
		val config.Resolved
	}{
		{"model", resolved.Model},
		{"hook_command", resolved.HookCommand},
		{"log.level", resolved.LogLevel},
		{"log.file", resolved.LogFile},
		{"log.format", resolved.LogFormat},
		{"gate.timeout", resolved.GateTimeout},
		{"gate.tail_chars", resolved.GateTailChars},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-16s %v  (from %s)\n", r.key+":", r.val.Value, r.val.Source)
	}

	if _, err := config.Load(nil); err != nil {
		fmt.Fprintf(out, "\n  ! %v\n", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(out, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(out, "  (none set)")
	}

	return nil
}

func printConfigFile(cmd *cobra.Command, label, path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s %s\n", label, path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "  ✗ %s %s (not found)\n", label, path)
	}
}
