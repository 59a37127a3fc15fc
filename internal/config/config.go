package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/script2video/internal/blueprint"
)

// Config is the run configuration for the blueprint compiler.
type Config struct {
	Canvas blueprint.Canvas `yaml:"canvas"`

	Layout struct {
		OverlapEpsilon    float64 `yaml:"overlap_epsilon"`
		MaxResizeAttempts int     `yaml:"max_resize_attempts"`
	} `yaml:"layout"`

	Timing struct {
		OverrunTolerance float64 `yaml:"overrun_tolerance"`
	} `yaml:"timing"`

	// Workers is the scene worker pool size. Zero means autodetect.
	Workers int `yaml:"workers"`

	Input struct {
		ScriptsDir string `yaml:"scripts_dir"`
	} `yaml:"input"`

	Output struct {
		BlueprintsDir string `yaml:"blueprints_dir"`
	} `yaml:"output"`

	// StyleFile optionally points at the default style document; the
	// built-in profile is used when empty.
	StyleFile string `yaml:"style_file"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Canvas = blueprint.Canvas{Width: 1280, Height: 720, Margin: 48}
	cfg.Layout.OverlapEpsilon = 4.0
	cfg.Layout.MaxResizeAttempts = 3
	cfg.Timing.OverrunTolerance = 0.05
	cfg.Input.ScriptsDir = "input/scripts"
	cfg.Output.BlueprintsDir = "output/blueprints"
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads a YAML config file on top of the defaults. String values
// of the form ${VAR} are substituted from the environment before
// decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	raw = substituteEnv(raw).(map[string]interface{})

	expanded, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// substituteEnv recursively replaces ${VAR} strings with the value of
// the environment variable. Unset variables keep the literal text.
func substituteEnv(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = substituteEnv(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = substituteEnv(item)
		}
		return val
	case string:
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			if env, ok := os.LookupEnv(val[2 : len(val)-1]); ok {
				return env
			}
		}
		return val
	default:
		return v
	}
}

// CreateDirs makes sure the input and output directories exist.
func (c *Config) CreateDirs() error {
	for _, dir := range []string{c.Input.ScriptsDir, c.Output.BlueprintsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
