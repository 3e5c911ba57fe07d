package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Staging, p.Staging)
	assert.Equal(t, Defaults().Transform, p.Transform)
	assert.Equal(t, "data/claims", p.Sources.Claims.Path)
	assert.NotNil(t, p.Sources.Claims.Options)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
sources:
  pharmacies:
    path: dir/pharmacies
    options:
      comma: ";"
staging:
  dir: stage
transform:
  top_chains: 3
`), 0o644))

	t.Setenv("RXCLAIMS_TRANSFORM_TOP_CHAINS", "4")
	t.Setenv("RXCLAIMS_STAGING_INCREMENTAL", "true")

	p, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "dir/pharmacies", p.Sources.Pharmacies.Path)
	assert.Equal(t, "csv", p.Sources.Pharmacies.Format)
	assert.Equal(t, ';', p.Sources.Pharmacies.Options.Rune("comma", ','))
	assert.Equal(t, "stage", p.Staging.Dir)
	assert.True(t, p.Staging.Incremental)
	assert.Equal(t, 4, p.Transform.TopChains, "env overrides file")
	assert.Equal(t, 5, p.Transform.TopQuantity, "default survives")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RXCLAIMS_RESULTS_DIR=out\n"), 0o644))
	t.Setenv("RXCLAIMS_RESULTS_DIR", "")
	t.Chdir(dir)

	p, err := Load("", envPath, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "out", p.Results.Dir)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
