// pkg/driver/driver_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: httptest, testutil.MemoryFS
// PURPOSE: Test driver install, metadata fallback, and drop-in generation

package driver_test

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandpress/sandpress/pkg/config"
	"github.com/sandpress/sandpress/pkg/driver"
	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/fetch"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/testutil"
)

// pluginZip builds a driver archive with the synthetic root GitHub
// wraps repository archives in.
func pluginZip(t *testing.T, withTemplate bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	root := "WordPress-sqlite-database-integration-1a2b3c4/"
	files := map[string]string{
		root + "load.php":   "<?php // plugin entry",
		root + "readme.txt": "SQLite Database Integration",
		root + "wp-includes/class-wp-sqlite-db.php": "<?php // support file",
	}
	if withTemplate {
		files[root+"db.copy"] = "<?php // upstream drop-in template"
	}
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

type driverUpstream struct {
	srv          *httptest.Server
	metadataFail atomic.Bool
	withTemplate bool

	releaseDownloads  atomic.Int64
	fallbackDownloads atomic.Int64
}

func newDriverUpstream(t *testing.T) *driverUpstream {
	u := &driverUpstream{withTemplate: true}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/releases/latest":
			if u.metadataFail.Load() {
				http.Error(w, "rate limited", http.StatusForbidden)
				return
			}
			_, _ = w.Write([]byte(`{"tag_name":"v2.1.11","zipball_url":"` + u.srv.URL + `/zipball"}`))
		case "/zipball":
			u.releaseDownloads.Add(1)
			_, _ = w.Write(pluginZip(t, u.withTemplate))
		case "/archive/develop.zip":
			u.fallbackDownloads.Add(1)
			_, _ = w.Write(pluginZip(t, u.withTemplate))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func (u *driverUpstream) config() config.DriverConfig {
	return config.DriverConfig{
		MetadataURL: u.srv.URL + "/releases/latest",
		FallbackURL: u.srv.URL + "/archive/develop.zip",
	}
}

func newInstaller(t *testing.T, m *testutil.MemoryFS, cfg config.DriverConfig) (*driver.Installer, paths.Paths) {
	t.Helper()
	p, err := paths.New("/env")
	require.NoError(t, err)
	client := fetch.New(m, p.CacheDir(), 5*time.Second)
	inst := driver.NewInstaller(m, p, client, cfg)
	inst.InitDatabase = func(path string) error {
		return m.WriteFile(path, []byte("SQLite format 3\x00"), 0644)
	}
	return inst, p
}

func TestInstallFresh(t *testing.T) {
	u := newDriverUpstream(t)
	m := testutil.NewMemoryFS()
	inst, p := newInstaller(t, m, u.config())

	require.NoError(t, inst.Install(false))

	installed, err := inst.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)

	// synthetic root stripped: entry file sits directly in the plugin dir
	assert.Equal(t, "<?php // plugin entry",
		testutil.MustReadFile(t, m, p.PluginDir()+"/load.php"))

	dropIn := testutil.MustReadFile(t, m, p.DropInPath())
	assert.Contains(t, dropIn, "define( 'DB_DIR', '/env/wordpress/wp-content/database' )")
	assert.Contains(t, dropIn, "define( 'DB_FILE', '.ht.sqlite' )")
	assert.Contains(t, dropIn, "define( 'SQLITE_MAIN_FILE', '"+p.PluginDir()+"/load.php' )")
	assert.Contains(t, dropIn, "if ( file_exists( SQLITE_MAIN_FILE ) )")

	assert.Equal(t, "DENY FROM ALL\n",
		testutil.MustReadFile(t, m, p.DatabaseDir()+"/.htaccess"))
	assert.True(t, len(testutil.MustReadFile(t, m, p.DatabasePath())) > 0,
		"database file must be pre-created")

	assert.Equal(t, int64(1), u.releaseDownloads.Load())
	assert.Equal(t, int64(0), u.fallbackDownloads.Load())
}

func TestInstallIdempotent(t *testing.T) {
	u := newDriverUpstream(t)
	m := testutil.NewMemoryFS()
	inst, _ := newInstaller(t, m, u.config())

	require.NoError(t, inst.Install(false))
	require.NoError(t, inst.Install(false))

	assert.Equal(t, int64(1), u.releaseDownloads.Load(), "second install must not download")
}

func TestInstallMetadataFallback(t *testing.T) {
	u := newDriverUpstream(t)
	u.metadataFail.Store(true)
	m := testutil.NewMemoryFS()
	inst, _ := newInstaller(t, m, u.config())

	// a metadata outage degrades to the default-branch archive
	require.NoError(t, inst.Install(false))

	installed, err := inst.IsInstalled()
	require.NoError(t, err)
	assert.True(t, installed)
	assert.Equal(t, int64(0), u.releaseDownloads.Load())
	assert.Equal(t, int64(1), u.fallbackDownloads.Load())
}

func TestInstallMissingTemplate(t *testing.T) {
	u := newDriverUpstream(t)
	u.withTemplate = false
	m := testutil.NewMemoryFS()
	inst, p := newInstaller(t, m, u.config())

	err := inst.Install(false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateMissing),
		"a missing template must be reported as a structural change, not generic I/O")

	installed, _ := inst.IsInstalled()
	assert.False(t, installed)

	// scratch cleaned up on the failure path too
	entries, err := m.ReadDir(p.CacheDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInstallForceRegeneratesDropIn(t *testing.T) {
	u := newDriverUpstream(t)
	m := testutil.NewMemoryFS()
	inst, p := newInstaller(t, m, u.config())

	require.NoError(t, inst.Install(false))
	original := testutil.MustReadFile(t, m, p.DropInPath())

	// simulate a hand edit; force reinstall must restore the generated file
	require.NoError(t, m.WriteFile(p.DropInPath(), []byte("<?php // tampered"), 0644))
	require.NoError(t, inst.Install(true))

	assert.Equal(t, original, testutil.MustReadFile(t, m, p.DropInPath()))
}
