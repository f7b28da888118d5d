// Package config provides configuration management for swarmkit.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (SWARMKIT_*)
// 3. Project config (.swarmkit/config.yaml in cwd, or $SWARMKIT_CONFIG)
// 4. Home config (~/.swarmkit/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all swarmkit configuration.
type Config struct {
	// Model is written into the provisioned settings document.
	Model string `yaml:"model" json:"model"`

	// HookCommand is the binary the provisioned hook and tool scripts exec.
	HookCommand string `yaml:"hook_command" json:"hook_command"`

	// Log settings
	Log LogConfig `yaml:"log" json:"log"`

	// Gate settings for the TaskCompleted hook
	Gate GateConfig `yaml:"gate" json:"gate"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// File receives hook logs. Hooks log nowhere when empty, since their
	// stderr is reserved for the host.
	File string `yaml:"file" json:"file"`

	// Format is json or console.
	Format string `yaml:"format" json:"format"`
}

// GateConfig controls verification command execution.
type GateConfig struct {
	// Timeout bounds each verification command (Go duration, "0" disables).
	Timeout string `yaml:"timeout" json:"timeout"`

	// TailChars is how many trailing characters of each stream are reported.
	TailChars int `yaml:"tail_chars" json:"tail_chars"`
}

// Default config values (used in resolution and validation).
const (
	defaultModel       = "claude-opus-4-6"
	defaultHookCommand = "swarmkit"
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
	defaultGateTimeout = "10m"
	defaultTailChars   = 4000
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model:       defaultModel,
		HookCommand: defaultHookCommand,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Gate: GateConfig{
			Timeout:   defaultGateTimeout,
			TailChars: defaultTailChars,
		},
	}
}

// GateTimeout parses Gate.Timeout. Zero means no timeout.
func (c *Config) GateTimeout() (time.Duration, error) {
	v := strings.TrimSpace(c.Gate.Timeout)
	if v == "" || v == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid gate.timeout %q: %w", c.Gate.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid gate.timeout %q: must not be negative", c.Gate.Timeout)
	}
	return d, nil
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
// Missing files are skipped; malformed files are an error.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, err := loadFromPath(homeConfigPath())
	if err != nil {
		return nil, err
	}
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, err := loadFromPath(projectConfigPath())
	if err != nil {
		return nil, err
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".swarmkit", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("SWARMKIT_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".swarmkit", "config.yaml")
}

// loadFromPath loads config from a YAML file. A missing file yields (nil, nil).
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("SWARMKIT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SWARMKIT_HOOK_COMMAND"); v != "" {
		cfg.HookCommand = v
	}
	if v := os.Getenv("SWARMKIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SWARMKIT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SWARMKIT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SWARMKIT_GATE_TIMEOUT"); v != "" {
		cfg.Gate.Timeout = v
	}
	if v := os.Getenv("SWARMKIT_GATE_TAIL_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Gate.TailChars = n
		}
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Model, src.Model)
	mergeStr(&dst.HookCommand, src.HookCommand)

	mergeStr(&dst.Log.Level, src.Log.Level)
	mergeStr(&dst.Log.File, src.Log.File)
	mergeStr(&dst.Log.Format, src.Log.Format)

	mergeStr(&dst.Gate.Timeout, src.Gate.Timeout)
	mergeInt(&dst.Gate.TailChars, src.Gate.TailChars)

	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.swarmkit/config.yaml"
	SourceProject Source = ".swarmkit/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) Resolved {
	result := Resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = Resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = Resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = Resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = Resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// Resolved is a config value and the layer it came from.
type Resolved struct {
	Value  string `json:"value" yaml:"value"`
	Source Source `json:"source" yaml:"source"`
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Model         Resolved `json:"model" yaml:"model"`
	HookCommand   Resolved `json:"hook_command" yaml:"hook_command"`
	LogLevel      Resolved `json:"log_level" yaml:"log_level"`
	LogFile       Resolved `json:"log_file" yaml:"log_file"`
	LogFormat     Resolved `json:"log_format" yaml:"log_format"`
	GateTimeout   Resolved `json:"gate_timeout" yaml:"gate_timeout"`
	GateTailChars Resolved `json:"gate_tail_chars" yaml:"gate_tail_chars"`
}

// Resolve returns configuration with source tracking.
// Unreadable config files are treated as absent here; Load reports them.
func Resolve(flagModel string) *ResolvedConfig {
	home, _ := loadFromPath(homeConfigPath())
	project, _ := loadFromPath(projectConfigPath())
	if home == nil {
		home = &Config{}
	}
	if project == nil {
		project = &Config{}
	}

	return &ResolvedConfig{
		Model:       resolveStringField(home.Model, project.Model, os.Getenv("SWARMKIT_MODEL"), flagModel, defaultModel),
		HookCommand: resolveStringField(home.HookCommand, project.HookCommand, os.Getenv("SWARMKIT_HOOK_COMMAND"), "", defaultHookCommand),
		LogLevel:    resolveStringField(home.Log.Level, project.Log.Level, os.Getenv("SWARMKIT_LOG_LEVEL"), "", defaultLogLevel),
		LogFile:     resolveStringField(home.Log.File, project.Log.File, os.Getenv("SWARMKIT_LOG_FILE"), "", ""),
		LogFormat:   resolveStringField(home.Log.Format, project.Log.Format, os.Getenv("SWARMKIT_LOG_FORMAT"), "", defaultLogFormat),
		GateTimeout: resolveStringField(home.Gate.Timeout, project.Gate.Timeout, os.Getenv("SWARMKIT_GATE_TIMEOUT"), "", defaultGateTimeout),
		GateTailChars: resolveStringField(
			intString(home.Gate.TailChars),
			intString(project.Gate.TailChars),
			os.Getenv("SWARMKIT_GATE_TAIL_CHARS"),
			"",
			strconv.Itoa(defaultTailChars),
		),
	}
}

func intString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
