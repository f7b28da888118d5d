package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/boshu2/swarmkit/internal/tools"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Read-only helpers for the team instructions",
	Long: `Helpers the provisioned instructions call through .claude/tools/*.sh
to snapshot the repository without shell pipelines.`,
}

var toolTreeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "List the top level of a directory",
	Long: `List a directory's entries sorted by name, at most 80. Directories end
in "/". .git, .venv, node_modules, dist and build are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToolTree,
}

var toolGitCmd = &cobra.Command{
	Use:   "git [args...]",
	Short: "Run git and print its stdout",
	Long: `Run git with the given arguments in the current directory. Only stdout is
printed. Errors, stderr and the exit status are discarded, so this always
exits 0.`,
	DisableFlagParsing: true,
	RunE:               runToolGit,
}

func init() {
	rootCmd.AddCommand(toolCmd)
	toolCmd.AddCommand(toolTreeCmd)
	toolCmd.AddCommand(toolGitCmd)
}

func runToolTree(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	return tools.WriteTree(cmd.OutOrStdout(), dir)
}

func runToolGit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tools.Git(ctx, nil, "", args, cmd.OutOrStdout())
	return nil
}
