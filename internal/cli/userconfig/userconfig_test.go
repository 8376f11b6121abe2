package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOrigin_PerProjectFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	app := filepath.Join(t.TempDir(), "console.json")
	tools := filepath.Join(t.TempDir(), "console.json")

	selected, err := SelectedOrigin(app)
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, SelectOrigin(app, "https://api.example.com/api"))
	require.NoError(t, SelectOrigin(tools, "https://staging.example.com/api"))

	selected, err = SelectedOrigin(app)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", selected)

	selected, err = SelectedOrigin(tools)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com/api", selected)

	info, err := os.Stat(filepath.Join(home, ".config", "hirehub-console", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSelectOrigin_EmptyForgets(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := filepath.Join(t.TempDir(), "console.json")

	require.NoError(t, SelectOrigin(project, "https://api.example.com/api"))
	require.NoError(t, SelectOrigin(project, ""))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Selections)
}

func TestSelectedOrigin_RelativePathMatchesAbsolute(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, SelectOrigin("console.json", "https://api.example.com/api"))

	selected, err := SelectedOrigin(filepath.Join(dir, "console.json"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", selected)
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := GetConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err = Load()
	assert.ErrorContains(t, err, "failed to parse user config file")
}

func TestSave_LeavesNoTemporaryFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SelectOrigin("/work/app/console.json", "https://api.example.com/api"))

	path, err := GetConfigPath()
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.json", entries[0].Name())
}
