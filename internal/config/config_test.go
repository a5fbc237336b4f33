package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[thresholds]
duplicate = 0.80
high_confidence = 0.92

[layout]
max_per_level = 32
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.80, cfg.Thresholds.Duplicate)
	assert.Equal(t, 0.92, cfg.Thresholds.HighConfidence)
	assert.Equal(t, 0.35, cfg.Thresholds.ConflictDivergence, "untouched sections keep defaults")
	assert.Equal(t, 32, cfg.Layout.MaxPerLevel)
	assert.Equal(t, 120.0, cfg.Layout.LevelHeight)
}

func TestValidateRejectsMisorderedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Thresholds.Duplicate = 0.97
	cfg.Thresholds.HighConfidence = 0.90
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Thresholds.ConflictDivergence = 1.2
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Layout.MaxPerLevel = 0
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
