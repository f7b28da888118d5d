package tools

import (
	"context"
	"io"

	"github.com/boshu2/swarmkit/internal/guard"
)

// Git runs git with args in dir and copies its stdout to w. Stderr, the exit
// status and start failures are all swallowed: callers embed the output in
// documents and must never see an error from it.
func Git(ctx context.Context, runner guard.Runner, dir string, args []string, w io.Writer) {
	if runner == nil {
		runner = guard.ExecRunner{}
	}
	res := runner.Run(ctx, dir, append([]string{"git"}, args...))
	_, _ = io.WriteString(w, res.Stdout) //nolint:errcheck // output is best-effort
}
