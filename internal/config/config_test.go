package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and SWARMKIT_CONFIG at empty temp locations and clears env overrides.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("HOME", home)
	t.Setenv("SWARMKIT_CONFIG", project)
	for _, k := range []string{
		"SWARMKIT_MODEL", "SWARMKIT_HOOK_COMMAND", "SWARMKIT_LOG_LEVEL",
		"SWARMKIT_LOG_FILE", "SWARMKIT_LOG_FORMAT", "SWARMKIT_GATE_TIMEOUT",
		"SWARMKIT_GATE_TAIL_CHARS",
	} {
		t.Setenv(k, "")
	}
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model != "claude-opus-4-6" {
		t.Errorf("Default Model = %q, want %q", cfg.Model, "claude-opus-4-6")
	}
	if cfg.HookCommand != "swarmkit" {
		t.Errorf("Default HookCommand = %q, want %q", cfg.HookCommand, "swarmkit")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Default Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.File != "" {
		t.Errorf("Default Log.File = %q, want empty", cfg.Log.File)
	}
	if cfg.Gate.Timeout != "10m" {
		t.Errorf("Default Gate.Timeout = %q, want %q", cfg.Gate.Timeout, "10m")
	}
	if cfg.Gate.TailChars != 4000 {
		t.Errorf("Default Gate.TailChars = %d, want %d", cfg.Gate.TailChars, 4000)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Model: "claude-sonnet",
		Gate:  GateConfig{TailChars: 100},
	}

	result := merge(dst, src)

	if result.Model != "claude-sonnet" {
		t.Errorf("merge Model = %q, want %q", result.Model, "claude-sonnet")
	}
	if result.Gate.TailChars != 100 {
		t.Errorf("merge Gate.TailChars = %d, want %d", result.Gate.TailChars, 100)
	}
	// Defaults should be preserved when not overridden
	if result.Gate.Timeout != "10m" {
		t.Errorf("merge preserved Gate.Timeout = %q, want %q", result.Gate.Timeout, "10m")
	}
	if result.HookCommand != "swarmkit" {
		t.Errorf("merge preserved HookCommand = %q, want %q", result.HookCommand, "swarmkit")
	}
}

func TestGateTimeout(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"10m", 10 * time.Minute, false},
		{"30s", 30 * time.Second, false},
		{"0", 0, false},
		{"", 0, false},
		{"  ", 0, false},
		{"-5s", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		cfg := &Config{Gate: GateConfig{Timeout: tt.value}}
		got, err := cfg.GateTimeout()
		if (err != nil) != tt.wantErr {
			t.Errorf("GateTimeout(%q) err = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("GateTimeout(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestLoad_DefaultsWhenNoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != defaultModel {
		t.Errorf("Model = %q, want %q", cfg.Model, defaultModel)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".swarmkit", "config.yaml"), "model: home-model\nhook_command: /opt/swarmkit\ngate:\n  timeout: 1m\n")
	writeFile(t, project, "model: project-model\nlog:\n  level: debug\n")
	t.Setenv("SWARMKIT_GATE_TIMEOUT", "2m")

	cfg, err := Load(&Config{Log: LogConfig{Level: "error"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Model != "project-model" {
		t.Errorf("Model = %q, want project-model (project beats home)", cfg.Model)
	}
	if cfg.HookCommand != "/opt/swarmkit" {
		t.Errorf("HookCommand = %q, want /opt/swarmkit (home beats default)", cfg.HookCommand)
	}
	if cfg.Gate.Timeout != "2m" {
		t.Errorf("Gate.Timeout = %q, want 2m (env beats home)", cfg.Gate.Timeout)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error (flag beats project)", cfg.Log.Level)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, project, "model: [unterminated\n")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for malformed project config")
	}
}

func TestApplyEnv_TailChars(t *testing.T) {
	isolate(t)

	t.Setenv("SWARMKIT_GATE_TAIL_CHARS", "250")
	if got := applyEnv(Default()).Gate.TailChars; got != 250 {
		t.Errorf("TailChars = %d, want 250", got)
	}

	t.Setenv("SWARMKIT_GATE_TAIL_CHARS", "lots")
	if got := applyEnv(Default()).Gate.TailChars; got != defaultTailChars {
		t.Errorf("TailChars with invalid env = %d, want default %d", got, defaultTailChars)
	}
}

func TestResolve_Sources(t *testing.T) {
	home, project := isolate(t)
	writeFile(t, filepath.Join(home, ".swarmkit", "config.yaml"), "hook_command: /usr/local/bin/swarmkit\n")
	writeFile(t, project, "gate:\n  tail_chars: 1000\n")
	t.Setenv("SWARMKIT_LOG_LEVEL", "debug")

	rc := Resolve("flag-model")

	checks := []struct {
		name   string
		got    Resolved
		value  string
		source Source
	}{
		{"model", rc.Model, "flag-model", SourceFlag},
		{"hook_command", rc.HookCommand, "/usr/local/bin/swarmkit", SourceHome},
		{"gate_tail_chars", rc.GateTailChars, "1000", SourceProject},
		{"log_level", rc.LogLevel, "debug", SourceEnv},
		{"gate_timeout", rc.GateTimeout, "10m", SourceDefault},
	}
	for _, c := range checks {
		if c.got.Value != c.value || c.got.Source != c.source {
			t.Errorf("%s = %+v, want {%s %s}", c.name, c.got, c.value, c.source)
		}
	}
}
