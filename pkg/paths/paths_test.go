package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
	}{
		{
			name: "explicit root",
			root: "/tmp/sandpress-env",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/sandpress-env", p.Root())
			},
		},
		{
			name: "from SANDPRESS_ROOT env",
			envSetup: map[string]string{
				EnvRoot: "/env/sandpress",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/sandpress", p.Root())
			},
		},
		{
			name: "xdg fallback is absolute",
			validate: func(t *testing.T, p Paths) {
				assert.True(t, filepath.IsAbs(p.Root()))
				assert.Contains(t, p.Root(), "sandpress")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvRoot, "")
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}
			p, err := New(tt.root)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestLayout(t *testing.T) {
	p, err := New("/env")
	require.NoError(t, err)

	assert.Equal(t, "/env/wordpress", p.WordPressDir())
	assert.Equal(t, "/env/wordpress/wp-settings.php", p.BootstrapPath())
	assert.Equal(t, "/env/wordpress/wp-includes/version.php", p.VersionFilePath())
	assert.Equal(t, "/env/wordpress/wp-config.php", p.ConfigPath())
	assert.Equal(t, "/env/wordpress/wp-content/db.php", p.DropInPath())
	assert.Equal(t, "/env/wordpress/wp-content/plugins/sqlite-database-integration", p.PluginDir())
	assert.Equal(t, "/env/wordpress/wp-content/database/.ht.sqlite", p.DatabasePath())
	assert.Equal(t, "/env/snapshots/baseline.sqlite", p.BaselinePath())
	assert.Equal(t, "/env/snapshots/baseline.yaml", p.BaselineMetaPath())
	assert.Equal(t, "/env/cache", p.CacheDir())
}
