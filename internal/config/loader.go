package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
// Durations are expressed in seconds.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel   string `json:"log_level" yaml:"log_level" toml:"log_level"`
	DisplayFPS int    `json:"display_fps" yaml:"display_fps" toml:"display_fps"`

	Width  int `json:"width" yaml:"width" toml:"width"`
	Height int `json:"height" yaml:"height" toml:"height"`

	FlipInterval       float64 `json:"flip_interval" yaml:"flip_interval" toml:"flip_interval"`
	RevealInterval     float64 `json:"reveal_interval" yaml:"reveal_interval" toml:"reveal_interval"`
	InsertionCount     int     `json:"insertion_count" yaml:"insertion_count" toml:"insertion_count"`
	PoolSize           int     `json:"pool_size" yaml:"pool_size" toml:"pool_size"`
	Admission          string  `json:"admission" yaml:"admission" toml:"admission"`
	AdmissionThreshold int     `json:"admission_threshold" yaml:"admission_threshold" toml:"admission_threshold"`
	LiftScale          float64 `json:"lift_scale" yaml:"lift_scale" toml:"lift_scale"`
	ScaleKernel        string  `json:"scale_kernel" yaml:"scale_kernel" toml:"scale_kernel"`

	Prompts     []string `json:"prompts" yaml:"prompts" toml:"prompts"`
	PromptIndex int      `json:"prompt_index" yaml:"prompt_index" toml:"prompt_index"`
	Strength    float64  `json:"strength" yaml:"strength" toml:"strength"`
	StepCount   int      `json:"step_count" yaml:"step_count" toml:"step_count"`
	Guidance    float64  `json:"guidance" yaml:"guidance" toml:"guidance"`
	Seed        int64    `json:"seed" yaml:"seed" toml:"seed"`
	SeedPolicy  string   `json:"seed_policy" yaml:"seed_policy" toml:"seed_policy"`

	Generator       string  `json:"generator" yaml:"generator" toml:"generator"`
	GeminiModel     string  `json:"gemini_model" yaml:"gemini_model" toml:"gemini_model"`
	GeminiAPIKeyEnv string  `json:"gemini_api_key_env" yaml:"gemini_api_key_env" toml:"gemini_api_key_env"`
	DummyMinLatency float64 `json:"dummy_min_latency" yaml:"dummy_min_latency" toml:"dummy_min_latency"`
	DummyMaxLatency float64 `json:"dummy_max_latency" yaml:"dummy_max_latency" toml:"dummy_max_latency"`

	Source        string  `json:"source" yaml:"source" toml:"source"`
	SourceDir     string  `json:"source_dir" yaml:"source_dir" toml:"source_dir"`
	SourceHold    float64 `json:"source_hold" yaml:"source_hold" toml:"source_hold"`
	PatternPeriod float64 `json:"pattern_period" yaml:"pattern_period" toml:"pattern_period"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Resolve loads path when it is set, fills defaults and validates.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		c, err := Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}
