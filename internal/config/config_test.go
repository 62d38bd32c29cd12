package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlitejson/internal/sqlfunc"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlitejson.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeFile(t, `
path: ./docs.db
table: events
column: payload
create_table: false
install_extensions: false
batch_size: 250
seed: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Path:              "./docs.db",
		Table:             "events",
		Column:            "payload",
		CreateTable:       false,
		InstallExtensions: false,
		BatchSize:         250,
		Seed:              42,
	}, cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "table: events\n"))
	require.NoError(t, err)

	want := Defaults()
	want.Table = "events"
	assert.Equal(t, want, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(writeFile(t, "batchsize: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batchsize")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	_, err := Load(writeFile(t, "batch_size: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, ":memory:", cfg.Path)
	assert.Equal(t, "docs", cfg.Table)
	assert.Equal(t, "body", cfg.Column)
	assert.True(t, cfg.CreateTable)
	assert.True(t, cfg.InstallExtensions)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestStoreConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Table = "events"
	cfg.CreateTable = false
	cfg.Seed = 9

	sc := cfg.StoreConfig()
	assert.Equal(t, "events", sc.Table)
	require.NotNil(t, sc.CreateTable)
	assert.False(t, *sc.CreateTable)
	require.NotNil(t, sc.InstallExtensions)
	assert.True(t, *sc.InstallExtensions)

	replay := sqlfunc.NewRand(9)
	for range 10 {
		assert.Equal(t, replay.IntN(100), sc.Rand.IntN(100))
	}
}

func TestRand_ZeroSeedUsesSystem(t *testing.T) {
	assert.Equal(t, sqlfunc.SystemRand(), Defaults().Rand())
}
