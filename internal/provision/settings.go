package provision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// SettingsSchemaURL is the public schema the host associates with settings files.
const SettingsSchemaURL = "https://json.schemastore.org/claude-code-settings.json"

// HookEntry represents a single hook command (e.g., {"type": "command", "command": "..."}).
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookGroup represents a hook group with optional matcher and a hooks array.
// Host format: {"matcher": "Edit|Write", "hooks": [{"type": "command", "command": "..."}]}
type HookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []HookEntry `json:"hooks"`
}

// HooksConfig is the hooks section of the provisioned settings. Only the two
// events the guards attach to are wired.
type HooksConfig struct {
	PreToolUse    []HookGroup `json:"PreToolUse,omitempty"`
	TaskCompleted []HookGroup `json:"TaskCompleted,omitempty"`
}

// Permissions is the host permission model: rules that are allowed outright,
// rules that prompt the operator, and rules that are refused.
type Permissions struct {
	DefaultMode string   `json:"defaultMode"`
	Allow       []string `json:"allow"`
	Ask         []string `json:"ask"`
	Deny        []string `json:"deny"`
}

// Settings is the provisioned settings document. Field order is the JSON key order.
type Settings struct {
	Schema       string            `json:"$schema"`
	Model        string            `json:"model"`
	TeammateMode string            `json:"teammateMode"`
	Env          map[string]string `json:"env"`
	Permissions  Permissions       `json:"permissions"`
	Hooks        HooksConfig       `json:"hooks"`
}

var (
	allowRules = []string{
		"Read", "Grep", "Glob", "Task",
		"Bash(git *)",
		"Bash(python *)", "Bash(pytest *)",
		"Bash(uv *)", "Bash(poetry *)",
		"Bash(npm *)", "Bash(pnpm *)", "Bash(yarn *)",
		"Bash(make *)", "Bash(cmake *)",
		"Edit", "Write",
	}

	askRules = []string{
		"Bash(git push *)",
		"Bash(git reset *)",
		"Bash(git clean *)",
		"Bash(rm *)",
		"Bash(sudo *)",
	}

	denyRules = []string{
		"Read(**/.env)",
		"Read(**/.env.*)",
		"Read(**/secrets/**)",
		"Read(**/credentials.*)",
		"Edit(**/.env)",
		"Edit(**/.env.*)",
		"Edit(**/secrets/**)",
		"Write(**/.env)",
		"Write(**/.env.*)",
		"Write(**/secrets/**)",
	}
)

// AllowRules returns a copy of the allow list.
func AllowRules() []string { return cloneStrings(allowRules) }

// AskRules returns a copy of the ask list.
func AskRules() []string { return cloneStrings(askRules) }

// DenyRules returns a copy of the deny list.
func DenyRules() []string { return cloneStrings(denyRules) }

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// SettingsOptions parameterizes ComposeSettings.
type SettingsOptions struct {
	Model string
	// ProtectHookCommand and CompletionHookCommand are the host-side commands.
	ProtectHookCommand    string
	CompletionHookCommand string
	// HookTimeout, when positive, is set as the TaskCompleted hook timeout.
	HookTimeout time.Duration
}

// ComposeSettings builds the settings document.
func ComposeSettings(opts SettingsOptions) Settings {
	completion := HookEntry{Type: "command", Command: opts.CompletionHookCommand}
	if opts.HookTimeout > 0 {
		completion.Timeout = int(math.Ceil(opts.HookTimeout.Seconds()))
	}

	return Settings{
		Schema:       SettingsSchemaURL,
		Model:        opts.Model,
		TeammateMode: "in-process",
		Env: map[string]string{
			"CLAUDE_CODE_EXPERIMENTAL_AGENT_TEAMS": "1",
		},
		Permissions: Permissions{
			DefaultMode: "acceptEdits",
			Allow:       AllowRules(),
			Ask:         AskRules(),
			Deny:        DenyRules(),
		},
		Hooks: HooksConfig{
			PreToolUse: []HookGroup{
				{
					Matcher: "Edit|Write",
					Hooks:   []HookEntry{{Type: "command", Command: opts.ProtectHookCommand}},
				},
			},
			TaskCompleted: []HookGroup{
				{Hooks: []HookEntry{completion}},
			},
		},
	}
}

// MarshalSettings renders s as two-space indented JSON with a trailing newline.
func MarshalSettings(s Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return buf.Bytes(), nil
}
