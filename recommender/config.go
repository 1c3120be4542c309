package recommender

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfigFile = "config.json"

// Config collects every tunable of the engine. Zero values are replaced by
// ApplyDefaults, so a partially filled config.json is valid.
type Config struct {
	DataDir        string  `json:"dataDir"`
	ModelPath      string  `json:"modelPath"`
	BranchRulePath string  `json:"branchRulePath"`
	MatchThreshold int     `json:"matchThreshold"`
	Floor          float64 `json:"probabilityFloor"`
	OverflowMargin float64 `json:"overflowMargin"`
	ProbWeight     float64 `json:"probabilityWeight"`
	VFMWeight      float64 `json:"vfmWeight"`
	DefaultVFM     float64 `json:"defaultVfm"`

	CutoffColumns CutoffParseOptions `json:"cutoffColumns,omitempty"`
	VFMColumns    VFMParseOptions    `json:"vfmColumns,omitempty"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ModelPath == "" {
		c.ModelPath = filepath.Join("models", "college_recommendation_model.json")
	}
	if c.BranchRulePath == "" {
		c.BranchRulePath = filepath.Join("config", "branch_rules.json")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 100 {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if c.Floor <= 0 || c.Floor >= 1 {
		c.Floor = DefaultProbabilityFloor
	}
	if c.OverflowMargin <= 0 {
		c.OverflowMargin = DefaultOverflowMargin
	}
	if c.ProbWeight <= 0 {
		c.ProbWeight = DefaultProbabilityWeight
	}
	if c.VFMWeight <= 0 {
		c.VFMWeight = DefaultVFMWeight
	}
	if c.DefaultVFM <= 0 {
		c.DefaultVFM = DefaultVFM
	}
}

// Clone returns a copy of the configuration.
func (c Config) Clone() Config {
	return c
}

// LoadConfig loads configuration from the given path or the default
// config.json. A missing file yields the defaults, not an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
