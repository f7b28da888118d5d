// Package guard implements the two hooks the host runtime invokes around
// agent tool actions.
//
// Both guards are short-lived, stateless interceptors. The host starts a
// fresh process per event, hands it a JSON document on stdin and reads the
// verdict from the exit status: 0 lets the action proceed, 2 blocks it and
// surfaces whatever was written to stderr back to the agent.
//
// # PathGuard
//
// PathGuard runs on PreToolUse for Edit and Write actions. It extracts
// tool_input.file_path, normalizes backslashes to forward slashes and
// checks the result against a fixed list of protected substrings
// (environment files, secret directories, credential files, git
// internals). It never touches the filesystem.
//
// # CompletionGate
//
// CompletionGate runs on TaskCompleted. It looks for project markers in the
// working directory, runs the matching test commands one after another and
// refuses the completion signal on the first failure, reporting the tail of
// the captured output.
//
// # Failure posture
//
// Fail open on malformed input: a missing or unparseable event is treated
// as an empty path, which matches nothing. Fail closed on policy: any
// pattern match or failing command blocks.
package guard
