package provision

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/boshu2/swarmkit/embedded"
)

var scriptTemplate = template.Must(template.New("script").Parse(embedded.ScriptTemplate))

// scriptSpec describes a wrapper script that execs a swarmkit subcommand.
type scriptSpec struct {
	Description string
	Command     string
	Subcommand  string
	PassArgs    bool
}

// renderScript renders a POSIX sh wrapper. command is shell-quoted.
func renderScript(spec scriptSpec) ([]byte, error) {
	spec.Command = shellQuote(spec.Command)
	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, spec); err != nil {
		return nil, fmt.Errorf("render script %q: %w", spec.Subcommand, err)
	}
	return buf.Bytes(), nil
}

// shellQuote single-quotes s unless it is made only of safe characters.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=@%+", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
