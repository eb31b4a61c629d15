package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFindsEntryByName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  - name: mutex-race
    iterations: 50
    strategy: pct
    seed: 7
    max_priority_switches: 2
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Scenarios, 1)

	entry := cfg.Find("mutex-race")
	require.NotNil(t, entry)
	assert.Equal(t, 50, entry.Iterations)
	assert.Equal(t, "pct", entry.Strategy)
	assert.Equal(t, uint64(7), entry.Seed)
	assert.Equal(t, 2, entry.MaxPrioritySwitches)

	assert.Nil(t, cfg.Find("does-not-exist"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
