package guard

import (
	"fmt"
	"strings"
)

// defaultProtectedPatterns are matched as substrings of the normalized path.
var defaultProtectedPatterns = []string{
	"/.env",
	"/.env.",
	"/secrets/",
	"/credentials.",
	"/.git/",
}

// DefaultProtectedPatterns returns a copy of the built-in protected pattern list.
func DefaultProtectedPatterns() []string {
	out := make([]string, len(defaultProtectedPatterns))
	copy(out, defaultProtectedPatterns)
	return out
}

// Verdict is the outcome of a single PathGuard check.
type Verdict struct {
	Allowed bool
	Path    string
	Pattern string
}

// Message is the diagnostic line written to stderr on denial.
func (v Verdict) Message() string {
	if v.Allowed {
		return ""
	}
	return fmt.Sprintf("Blocked: %s matches protected pattern %s", v.Path, v.Pattern)
}

// Err returns ErrBlocked wrapped with the message, or nil when allowed.
func (v Verdict) Err() error {
	if v.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBlocked, v.Message())
}

// PathGuard denies edits to paths containing any protected pattern.
type PathGuard struct {
	patterns []string
}

// PathGuardOption configures a PathGuard.
type PathGuardOption func(*PathGuard)

// WithPatterns replaces the protected pattern list.
func WithPatterns(patterns ...string) PathGuardOption {
	return func(g *PathGuard) {
		g.patterns = append([]string(nil), patterns...)
	}
}

// NewPathGuard creates a PathGuard using the built-in pattern list unless overridden.
func NewPathGuard(opts ...PathGuardOption) *PathGuard {
	g := &PathGuard{patterns: DefaultProtectedPatterns()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Patterns returns the patterns in evaluation order.
func (g *PathGuard) Patterns() []string {
	out := make([]string, len(g.patterns))
	copy(out, g.patterns)
	return out
}

// NormalizePath converts backslash separators to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Check reports whether path may be edited. The first matching pattern is
// reported; an empty path matches nothing.
func (g *PathGuard) Check(path string) Verdict {
	p := NormalizePath(path)
	if p == "" {
		return Verdict{Allowed: true}
	}
	for _, pat := range g.patterns {
		if pat != "" && strings.Contains(p, pat) {
			return Verdict{Allowed: false, Path: p, Pattern: pat}
		}
	}
	return Verdict{Allowed: true, Path: p}
}

// CheckEvent is Check applied to the event's tool_input.file_path.
func (g *PathGuard) CheckEvent(ev ToolEvent) Verdict {
	return g.Check(ev.FilePath())
}
