// Package embedded provides the templates and schema that swarmkit bootstrap
// renders into a project. They ship inside the binary so provisioning needs
// nothing but the executable.
package embedded

import _ "embed"

// ScriptTemplate renders the hook and tool wrapper scripts.
//
//go:embed templates/script.sh.tmpl
var ScriptTemplate string

// SkillBody is the instructions document body, rendered after the frontmatter.
//
//go:embed templates/skill.md.tmpl
var SkillBody string

// SettingsSchema is the JSON Schema the composed settings document must satisfy.
//
//go:embed schema/settings.schema.json
var SettingsSchema []byte
