package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boshu2/swarmkit/internal/guard"
)

func TestProtectFiles(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "secrets blocked",
			stdin:      `{"tool_input": {"file_path": "/repo/secrets/api.key"}}`,
			wantCode:   exitDenied,
			wantStderr: "Blocked: /repo/secrets/api.key matches protected pattern /secrets/\n",
		},
		{
			name:     "source allowed",
			stdin:    `{"tool_input": {"file_path": "/repo/src/main.go"}}`,
			wantCode: exitOK,
		},
		{
			name:       "windows env file blocked",
			stdin:      `{"tool_name":"Write","tool_input":{"file_path":"C:\\repo\\.env"}}`,
			wantCode:   exitDenied,
			wantStderr: "Blocked: C:/repo/.env matches protected pattern /.env\n",
		},
		{
			name:     "malformed input allowed",
			stdin:    `{not json`,
			wantCode: exitOK,
		},
		{
			name:     "empty input allowed",
			stdin:    ``,
			wantCode: exitOK,
		},
		{
			name:     "non-string path allowed",
			stdin:    `{"tool_input": {"file_path": 42}}`,
			wantCode: exitOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			stdout, stderr := withIO(t, protectFilesCmd, tt.stdin)

			err := runProtectFiles(protectFilesCmd, nil)

			assert.Equal(t, tt.wantCode, exitCodeFor(err))
			assert.Equal(t, tt.wantStderr, stderr.String())
			assert.Empty(t, stdout.String())
			if tt.wantCode == exitDenied {
				assert.True(t, errors.Is(err, guard.ErrBlocked))
			}
		})
	}
}

func TestProtectFiles_LogsToConfiguredFile(t *testing.T) {
	isolateConfig(t)
	logFile := filepath.Join(t.TempDir(), "logs", "hooks.log")
	t.Setenv("SWARMKIT_LOG_FILE", logFile)
	t.Setenv("SWARMKIT_LOG_FORMAT", "json")

	_, stderr := withIO(t, protectFilesCmd, `{"tool_input": {"file_path": "/repo/.git/config"}}`)
	err := runProtectFiles(protectFilesCmd, nil)
	require.Equal(t, exitDenied, exitCodeFor(err))
	assert.Equal(t, "Blocked: /repo/.git/config matches protected pattern /.git/\n", stderr.String())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"edit blocked"`)
	assert.Contains(t, string(data), `"pattern":"/.git/"`)
}

// scriptedRunner fails any command whose first argument is in fail.
type scriptedRunner struct {
	calls [][]string
	fail  map[string]guard.CommandResult
}

func (s *scriptedRunner) Run(_ context.Context, _ string, args []string) guard.CommandResult {
	s.calls = append(s.calls, args)
	if r, ok := s.fail[args[0]]; ok {
		r.Args = args
		return r
	}
	return guard.CommandResult{Args: args}
}

func useRunner(t *testing.T, r guard.Runner) {
	t.Helper()
	orig := newGateRunner
	newGateRunner = func() guard.Runner { return r }
	t.Cleanup(func() { newGateRunner = orig })
}

func TestTaskCompleted_NoMarkersApproves(t *testing.T) {
	isolateConfig(t)
	runner := &scriptedRunner{}
	useRunner(t, runner)
	taskCompletedDir = t.TempDir()
	stdout, stderr := withIO(t, taskCompletedCmd, `{"hook_event_name":"TaskCompleted"}`)

	err := runTaskCompleted(taskCompletedCmd, nil)

	assert.Equal(t, exitOK, exitCodeFor(err))
	assert.Empty(t, runner.calls)
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestTaskCompleted_FailingTestsDeny(t *testing.T) {
	isolateConfig(t)
	runner := &scriptedRunner{fail: map[string]guard.CommandResult{
		"python": {ExitCode: 1, Stdout: "1 failed, 3 passed\n", Stderr: "AssertionError\n"},
	}}
	useRunner(t, runner)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
	taskCompletedDir = dir
	stdout, stderr := withIO(t, taskCompletedCmd, `{}`)

	err := runTaskCompleted(taskCompletedCmd, nil)

	assert.Equal(t, exitDenied, exitCodeFor(err))
	assert.True(t, errors.Is(err, guard.ErrGateFailed))
	assert.Empty(t, stdout.String())
	assert.Len(t, runner.calls, 1, "npm must not run after pytest fails")

	report := stderr.String()
	assert.True(t, strings.HasPrefix(report, guard.GateBanner+"\n\n"))
	assert.Contains(t, report, "Command: python -m pytest -q\n")
	assert.Contains(t, report, "STDOUT:\n1 failed, 3 passed\n")
	assert.Contains(t, report, "STDERR:\nAssertionError\n")
}

func TestTaskCompleted_AllPass(t *testing.T) {
	isolateConfig(t)
	runner := &scriptedRunner{}
	useRunner(t, runner)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
	taskCompletedDir = dir
	_, stderr := withIO(t, taskCompletedCmd, ``)

	err := runTaskCompleted(taskCompletedCmd, nil)

	assert.NoError(t, err)
	assert.Empty(t, stderr.String())
	assert.Equal(t, [][]string{
		{"python", "-m", "pytest", "-q"},
		{"npm", "test", "--silent"},
	}, runner.calls)
}

func TestTaskCompleted_TailCharsFromConfig(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SWARMKIT_GATE_TAIL_CHARS", "5")
	useRunner(t, &scriptedRunner{fail: map[string]guard.CommandResult{
		"npm": {ExitCode: 1, Stdout: "0123456789"},
	}})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
	taskCompletedDir = dir
	_, stderr := withIO(t, taskCompletedCmd, ``)

	err := runTaskCompleted(taskCompletedCmd, nil)

	assert.Equal(t, exitDenied, exitCodeFor(err))
	assert.Contains(t, stderr.String(), "STDOUT:\n56789\n")
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitOK, exitCodeFor(nil))
	assert.Equal(t, exitFailure, exitCodeFor(errors.New("boom")))
	assert.Equal(t, exitDenied, exitCodeFor(&exitError{code: exitDenied, err: guard.ErrBlocked}))
}
