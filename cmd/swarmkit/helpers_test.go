package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// isolateConfig points config lookups at empty temp locations and resets
// global flags touched by the tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SWARMKIT_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	for _, k := range configEnvVars[1:] {
		t.Setenv(k, "")
	}

	dryRun, verbose, output = false, false, "table"
	bootstrapDir, bootstrapModel = "", ""
	statusDir, taskCompletedDir = "", ""
	t.Cleanup(func() {
		dryRun, verbose, output = false, false, "table"
		bootstrapDir, bootstrapModel = "", ""
		statusDir, taskCompletedDir = "", ""
	})
}

// withIO wires stdin, stdout and stderr of cmd to buffers.
func withIO(t *testing.T, cmd *cobra.Command, stdin string) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	t.Cleanup(func() {
		cmd.SetIn(nil)
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	return stdout, stderr
}
