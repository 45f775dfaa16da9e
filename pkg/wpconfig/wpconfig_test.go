package wpconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/testutil"
	"github.com/sandpress/sandpress/pkg/wpconfig"
)

func newGenerator(t *testing.T) (*wpconfig.Generator, *testutil.MemoryFS, paths.Paths) {
	t.Helper()
	m := testutil.NewMemoryFS()
	p, err := paths.New("/env")
	require.NoError(t, err)
	require.NoError(t, m.MkdirAll(p.WordPressDir(), 0755))
	return wpconfig.NewGenerator(m, p), m, p
}

func TestInstallWritesLoadableConfig(t *testing.T) {
	g, m, p := newGenerator(t)

	require.NoError(t, g.Install(false))

	content := testutil.MustReadFile(t, m, p.ConfigPath())
	assert.Contains(t, content, "define( 'DB_NAME'")
	assert.Contains(t, content, "define( 'AUTH_KEY'")
	assert.Contains(t, content, "define( 'NONCE_SALT'")
	assert.Contains(t, content, "$table_prefix = 'wp_';")
	assert.Contains(t, content, "require_once ABSPATH . 'wp-settings.php';")
	assert.Contains(t, content, p.DatabasePath())
}

func TestInstallKeepsExistingConfig(t *testing.T) {
	g, m, p := newGenerator(t)

	require.NoError(t, g.Install(false))
	first := testutil.MustReadFile(t, m, p.ConfigPath())

	// salts are random per generation, so an unchanged file proves the
	// second install did not rewrite it
	require.NoError(t, g.Install(false))
	assert.Equal(t, first, testutil.MustReadFile(t, m, p.ConfigPath()))
}

func TestInstallForceRegenerates(t *testing.T) {
	g, m, p := newGenerator(t)

	require.NoError(t, g.Install(false))
	first := testutil.MustReadFile(t, m, p.ConfigPath())

	require.NoError(t, g.Install(true))
	assert.NotEqual(t, first, testutil.MustReadFile(t, m, p.ConfigPath()),
		"forced regeneration produces fresh salts")
}

func TestIsInstalled(t *testing.T) {
	g, _, _ := newGenerator(t)

	installed, err := g.IsInstalled()
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, g.Install(false))

	installed, err = g.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)
}
