package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boshu2/swarmkit/internal/provision"
)

var (
	statusDir string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the last bootstrap run wrote",
	Long: `Read .claude/swarmkit/provision.jsonl and list the artifacts of the most
recent bootstrap run, whether each is still on disk, and the backup it
produced.

Examples:
  swarmkit status
  swarmkit status --dir ../service -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusDir, "dir", "", "Project directory (default: current directory)")
}

// artifactStatus is one row of the status report.
type artifactStatus struct {
	provision.LedgerRecord
	Present       bool `json:"present"`
	BackupPresent bool `json:"backup_present,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectDir(statusDir)
	if err != nil {
		return err
	}

	ledger := provision.NewLedger(filepath.Join(root, filepath.FromSlash(provision.LedgerFile)))
	last, err := ledger.LastRun()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	rows := make([]artifactStatus, 0, len(last))
	for _, rec := range last {
		row := artifactStatus{LedgerRecord: rec, Present: exists(root, rec.ArtifactPath)}
		if rec.BackupPath != "" {
			row.BackupPresent = exists(root, rec.BackupPath)
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if GetOutput() == "json" {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No bootstrap runs recorded under %s. Run 'swarmkit bootstrap' first.\n", root)
		return nil
	}

	fmt.Fprintf(out, "Last bootstrap: run %s (%s)\n\n", rows[0].RunStamp, rows[0].RunID)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tARTIFACT\tSTATE\tBACKUP")
	for _, r := range rows {
		state := "present"
		if !r.Present {
			state = "missing"
		}
		backup := "-"
		if r.BackupPath != "" {
			backup = r.BackupPath
			if !r.BackupPresent {
				backup += " (missing)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ArtifactKind, r.ArtifactPath, state, backup)
	}
	return tw.Flush()
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
