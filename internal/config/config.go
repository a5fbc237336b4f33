package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

// ThresholdConfig holds the similarity cutoffs used by deduplication and
// conflict detection. The exact values are policy; only the ordering
// duplicate <= high_confidence is structural.
type ThresholdConfig struct {
	Duplicate          float64 `toml:"duplicate"`           // pair reported as possible duplicate at or above
	HighConfidence     float64 `toml:"high_confidence"`     // pair flagged near-certain at or above
	ConflictDivergence float64 `toml:"conflict_divergence"` // definitions conflict when 1-similarity exceeds
}

type LayoutConfig struct {
	LevelHeight  float64 `toml:"level_height"`
	LevelWidth   float64 `toml:"level_width"`
	BaseRadius   float64 `toml:"base_radius"`
	Step         float64 `toml:"step"`
	LaneGap      float64 `toml:"lane_gap"`
	ClusterGap   float64 `toml:"cluster_gap"`
	MaxPerLevel  int     `toml:"max_per_level"`
	GridCellSize float64 `toml:"grid_cell_size"`
}

type Config struct {
	LLM        LLMConfig       `toml:"llm"`
	Memgraph   MemgraphConfig  `toml:"memgraph"`
	SQLite     SQLiteConfig    `toml:"sqlite"`
	Thresholds ThresholdConfig `toml:"thresholds"`
	Layout     LayoutConfig    `toml:"layout"`
}

// Default returns the configuration used when no file overrides a section.
func Default() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			Duplicate:          0.85,
			HighConfidence:     0.95,
			ConflictDivergence: 0.35,
		},
		Layout: LayoutConfig{
			LevelHeight:  120,
			LevelWidth:   160,
			BaseRadius:   300,
			Step:         180,
			LaneGap:      100,
			ClusterGap:   80,
			MaxPerLevel:  64,
			GridCellSize: 140,
		},
		SQLite: SQLiteConfig{Path: "conceptgraph.db"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	t := c.Thresholds
	if t.Duplicate <= 0 || t.Duplicate > 1 || t.HighConfidence <= 0 || t.HighConfidence > 1 {
		return fmt.Errorf("thresholds must be in (0,1]: duplicate=%.2f high_confidence=%.2f", t.Duplicate, t.HighConfidence)
	}
	if t.Duplicate > t.HighConfidence {
		return fmt.Errorf("duplicate threshold %.2f must not exceed high_confidence %.2f", t.Duplicate, t.HighConfidence)
	}
	if t.ConflictDivergence <= 0 || t.ConflictDivergence >= 1 {
		return fmt.Errorf("conflict_divergence must be in (0,1): %.2f", t.ConflictDivergence)
	}
	if c.Layout.MaxPerLevel < 1 {
		return fmt.Errorf("layout max_per_level must be positive: %d", c.Layout.MaxPerLevel)
	}
	return nil
}
