package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Studio", "site"), expandHome("~/Studio/site"))
	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, "/srv/site", expandHome("/srv/site"))
	assert.Equal(t, "~other/site", expandHome("~other/site"))
}

func TestIsDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".ht.sqlite")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.True(t, isDatabaseFile(file))
	assert.False(t, isDatabaseFile(dir))
	assert.False(t, isDatabaseFile(filepath.Join(dir, "missing")))
}
