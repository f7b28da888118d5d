package guard

import (
	"encoding/json"
	"io"
)

// ToolEvent is the hook payload the host writes to stdin.
// Only the fields the guards read are decoded; everything else is ignored.
type ToolEvent struct {
	HookEventName string         `json:"hook_event_name,omitempty"`
	ToolName      string         `json:"tool_name,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	Cwd           string         `json:"cwd,omitempty"`
	ToolInput     map[string]any `json:"tool_input,omitempty"`
}

// FilePath returns tool_input.file_path, or "" when it is absent or not a string.
func (e ToolEvent) FilePath() string {
	if e.ToolInput == nil {
		return ""
	}
	p, ok := e.ToolInput["file_path"].(string)
	if !ok {
		return ""
	}
	return p
}

// DecodeToolEvent reads a ToolEvent from r. It never fails: unreadable or
// malformed input yields the zero event, whose FilePath is empty.
func DecodeToolEvent(r io.Reader) ToolEvent {
	var ev ToolEvent
	if r == nil {
		return ev
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ev
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ToolEvent{}
	}
	return ev
}
