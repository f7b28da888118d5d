package provision

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/boshu2/swarmkit/embedded"
)

// SkillName is the instructions document's name and directory.
const SkillName = "opus-swarm"

// Teammate is one fixed role in the agent team the instructions describe.
type Teammate struct {
	ID   string
	Role string
}

// DefaultRoster is the team the instructions ask the lead to create.
func DefaultRoster() []Teammate {
	return []Teammate{
		{"T1", "RepoArchaeologist"},
		{"T2", "Architect"},
		{"T3", "SpecWriter"},
		{"T4", "Impl-Core"},
		{"T5", "Impl-Edge"},
		{"T6", "Tests-Unit"},
		{"T7", "Tests-Integration"},
		{"T8", "Perf"},
		{"T9", "Sec"},
		{"T10", "CI-Release"},
		{"T11", "Reviewer-A"},
		{"T12", "Reviewer-B"},
	}
}

// SkillFrontmatter is the YAML header of the instructions document.
type SkillFrontmatter struct {
	Name                   string `yaml:"name"`
	Description            string `yaml:"description"`
	ArgumentHint           string `yaml:"argument-hint"`
	DisableModelInvocation bool   `yaml:"disable-model-invocation"`
	Model                  string `yaml:"model"`
	AllowedTools           string `yaml:"allowed-tools"`
}

type skillData struct {
	Model     string
	GitSafe   string
	QuickTree string
	ReportDir string
	Roster    []Teammate
}

var skillTemplate = template.Must(template.New("skill").Parse(embedded.SkillBody))

// RenderSkill renders the instructions document: YAML frontmatter, then the body.
func RenderSkill(model string) ([]byte, error) {
	fm := SkillFrontmatter{
		Name:                   SkillName,
		Description:            "Launch an agent team pinned to " + model + " and finish $ARGUMENTS with maximum parallelism without breaking existing CI/CD behavior",
		ArgumentHint:           "[task to accomplish]",
		DisableModelInvocation: true,
		Model:                  model,
		AllowedTools:           strings.Join(AllowRules(), ", "),
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("encode skill frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode skill frontmatter: %w", err)
	}
	buf.WriteString("---\n")

	data := skillData{
		Model:     model,
		GitSafe:   ToolsDir + "/" + GitSafeScript,
		QuickTree: ToolsDir + "/" + QuickTreeScript,
		ReportDir: "docs/swarm",
		Roster:    DefaultRoster(),
	}
	if err := skillTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render skill body: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseSkillFrontmatter extracts the YAML header from a rendered instructions document.
func ParseSkillFrontmatter(doc []byte) (*SkillFrontmatter, error) {
	s := string(doc)
	if !strings.HasPrefix(s, "---\n") {
		return nil, fmt.Errorf("skill document has no frontmatter")
	}
	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return nil, fmt.Errorf("skill frontmatter is not terminated")
	}
	var fm SkillFrontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, fmt.Errorf("parse skill frontmatter: %w", err)
	}
	return &fm, nil
}
