// Package config handles loading shadec configuration from files.
//
// Configuration can be written as TOML (shadec.toml, .shadec.toml) or YAML
// (shadec.yaml, shadec.yml). The file is searched for in the current
// directory and its parents, then in the home directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/shade/glsl"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/wgsl"
)

// Config represents the configuration file structure.
// All fields are optional; unset fields keep their defaults.
type Config struct {
	// Dialect is "glsl" or "wgsl".
	Dialect string `toml:"dialect,omitempty" yaml:"dialect,omitempty"`

	// GLSLVersion is a version directive value such as "100", "300 es"
	// or "330".
	GLSLVersion string `toml:"glsl_version,omitempty" yaml:"glsl_version,omitempty"`

	// Precision is the default float precision of ES fragment shaders.
	Precision string `toml:"precision,omitempty" yaml:"precision,omitempty"`

	// RemapDepth maps clip-space z to [0, w] in WGSL vertex entries.
	RemapDepth *bool `toml:"remap_depth,omitempty" yaml:"remap_depth,omitempty"`

	// Feedback selects the capture layout of the WGSL emulation:
	// "interleaved" or "separate". Empty keeps the layout of the program.
	Feedback string `toml:"feedback,omitempty" yaml:"feedback,omitempty"`

	// FeedbackGroup is the bind group of the emulation buffers.
	FeedbackGroup *uint32 `toml:"feedback_group,omitempty" yaml:"feedback_group,omitempty"`

	// WorkgroupSize is the workgroup x size of the emulation entry.
	WorkgroupSize *uint32 `toml:"workgroup_size,omitempty" yaml:"workgroup_size,omitempty"`

	// OutDir receives one file per compiled program. A leading ~ is
	// expanded. Empty writes to stdout.
	OutDir string `toml:"out_dir,omitempty" yaml:"out_dir,omitempty"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `toml:"log_level,omitempty" yaml:"log_level,omitempty"`

	// Color forces coloured output on or off.
	Color *bool `toml:"color,omitempty" yaml:"color,omitempty"`
}

// FileNames are the names searched for config files, in order of preference.
var FileNames = []string{
	"shadec.toml",
	".shadec.toml",
	"shadec.yaml",
	"shadec.yml",
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Dialect:     "wgsl",
		GLSLVersion: glsl.Version100.String(),
		Precision:   "mediump",
		LogLevel:    "warn",
	}
}

// Find searches for a config file starting from startDir and walking up to
// the root, then in the home directory. It returns "" if there is none.
func Find(startDir string) string {
	dir := startDir
	for {
		if path := findIn(dir); path != "" {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return findIn(home)
}

func findIn(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load finds and loads the config file for startDir. It returns nil and an
// empty path if no file is found.
func Load(startDir string) (*Config, string, error) {
	path := Find(startDir)
	if path == "" {
		return nil, "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile loads configuration from a specific file path. The format
// follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge returns c with every non-empty field of over applied on top.
// Neither input is modified.
func (c *Config) Merge(over *Config) (*Config, error) {
	out := &Config{}
	if c != nil {
		*out = *c
	}
	if over == nil {
		return out, nil
	}
	if err := copier.CopyWithOption(out, over, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("config: merge: %w", err)
	}
	return out, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Dialect {
	case "", "glsl", "wgsl":
	default:
		return fmt.Errorf("unknown dialect %q (want glsl or wgsl)", c.Dialect)
	}
	if c.GLSLVersion != "" {
		if _, err := ParseGLSLVersion(c.GLSLVersion); err != nil {
			return err
		}
	}
	switch c.Precision {
	case "", "lowp", "mediump", "highp":
	default:
		return fmt.Errorf("unknown precision %q", c.Precision)
	}
	if _, err := c.feedbackMode(); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := c.Level(); err != nil {
			return err
		}
	}
	if c.WorkgroupSize != nil && *c.WorkgroupSize == 0 {
		return fmt.Errorf("workgroup_size must be positive")
	}
	return nil
}

var glslVersions = map[string]glsl.Version{
	"100":    glsl.Version100,
	"300 es": glsl.VersionES300,
	"300es":  glsl.VersionES300,
	"310 es": glsl.VersionES310,
	"310es":  glsl.VersionES310,
	"330":    glsl.Version330,
	"410":    glsl.Version410,
	"450":    glsl.Version450,
}

// ParseGLSLVersion parses a version directive value. A trailing "core" is
// accepted for desktop versions.
func ParseGLSLVersion(s string) (glsl.Version, error) {
	key := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "core"))
	if v, ok := glslVersions[key]; ok {
		return v, nil
	}
	return glsl.Version{}, fmt.Errorf("unknown GLSL version %q", s)
}

func (c *Config) feedbackMode() (*ir.FeedbackMode, error) {
	var mode ir.FeedbackMode
	switch c.Feedback {
	case "":
		return nil, nil
	case "interleaved":
		mode = ir.FeedbackInterleaved
	case "separate":
		mode = ir.FeedbackSeparate
	default:
		return nil, fmt.Errorf("unknown feedback layout %q (want interleaved or separate)", c.Feedback)
	}
	return &mode, nil
}

// Level returns the configured log level, warn if unset.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// GLSLOptions converts c to GLSL writer options.
func (c *Config) GLSLOptions(logger *slog.Logger) (glsl.Options, error) {
	opts := glsl.DefaultOptions()
	if c.GLSLVersion != "" {
		v, err := ParseGLSLVersion(c.GLSLVersion)
		if err != nil {
			return glsl.Options{}, err
		}
		opts.LangVersion = v
	}
	if c.Precision != "" {
		opts.DefaultPrecision = c.Precision
	}
	opts.Logger = logger
	return opts, nil
}

// WGSLOptions converts c to WGSL writer options.
func (c *Config) WGSLOptions(logger *slog.Logger) (wgsl.Options, error) {
	opts := wgsl.DefaultOptions()
	if c.RemapDepth != nil {
		opts.RemapDepth = *c.RemapDepth
	}
	mode, err := c.feedbackMode()
	if err != nil {
		return wgsl.Options{}, err
	}
	opts.FeedbackMode = mode
	if c.FeedbackGroup != nil {
		opts.FeedbackGroup = *c.FeedbackGroup
	}
	if c.WorkgroupSize != nil {
		opts.WorkgroupSize = *c.WorkgroupSize
	}
	opts.Logger = logger
	return opts, nil
}

// ResolveOutDir returns OutDir with a leading ~ expanded.
func (c *Config) ResolveOutDir() (string, error) {
	if c.OutDir == "" {
		return "", nil
	}
	return homedir.Expand(c.OutDir)
}
