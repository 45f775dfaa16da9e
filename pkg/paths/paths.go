// Package paths provides centralized path handling for sandpress.
// Every file role in the managed environment root is resolved here so
// the rest of the codebase never assembles paths by hand.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/sandpress/sandpress/pkg/errors"
)

// Environment variable names
const (
	// EnvRoot overrides the managed environment root
	EnvRoot = "SANDPRESS_ROOT"
)

// Fixed names inside the managed root. These define sandpress's on-disk
// layout and are not user-configurable; user-facing knobs belong in
// pkg/config.
const (
	// WordPressDirName holds the extracted runtime tree
	WordPressDirName = "wordpress"

	// CacheDirName holds scratch downloads and temp extractions
	CacheDirName = "cache"

	// SnapshotDirName holds the baseline snapshot and its sidecar
	SnapshotDirName = "snapshots"

	// BaselineFileName is the baseline database snapshot
	BaselineFileName = "baseline.sqlite"

	// BaselineMetaFileName is the snapshot sidecar metadata
	BaselineMetaFileName = "baseline.yaml"

	// DatabaseFileName is the managed SQLite database file. The leading
	// ".ht" prefix keeps default Apache configs from serving it.
	DatabaseFileName = ".ht.sqlite"

	// DropInFileName is the generated persistence drop-in
	DropInFileName = "db.php"

	// PluginDirName is the directory of the installed persistence driver
	PluginDirName = "sqlite-database-integration"

	// ConfigFileName is the generated runtime bootstrap config
	ConfigFileName = "wp-config.php"

	// BootstrapFileName marks a complete runtime installation
	BootstrapFileName = "wp-settings.php"

	// VersionFileName carries the runtime version marker, relative to
	// the WordPress dir
	VersionFileName = "wp-includes/version.php"
)

// Paths resolves every file role inside one managed environment root.
type Paths interface {
	Root() string
	WordPressDir() string
	BootstrapPath() string
	VersionFilePath() string
	ConfigPath() string
	ContentDir() string
	PluginDir() string
	DropInPath() string
	DatabaseDir() string
	DatabasePath() string
	SnapshotDir() string
	BaselinePath() string
	BaselineMetaPath() string
	CacheDir() string
}

type envPaths struct {
	root string
}

// New creates a Paths rooted at root. When root is empty the
// SANDPRESS_ROOT environment variable is consulted, then the XDG data
// directory. Relative and ~-prefixed roots are normalized.
func New(root string) (Paths, error) {
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		root = filepath.Join(xdg.DataHome, "sandpress", "env")
	}

	if strings.HasPrefix(root, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot expand ~ in environment root")
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid environment root %q", root)
	}

	return &envPaths{root: abs}, nil
}

func (p *envPaths) Root() string         { return p.root }
func (p *envPaths) WordPressDir() string { return filepath.Join(p.root, WordPressDirName) }
func (p *envPaths) BootstrapPath() string {
	return filepath.Join(p.WordPressDir(), BootstrapFileName)
}
func (p *envPaths) VersionFilePath() string {
	return filepath.Join(p.WordPressDir(), filepath.FromSlash(VersionFileName))
}
func (p *envPaths) ConfigPath() string { return filepath.Join(p.WordPressDir(), ConfigFileName) }
func (p *envPaths) ContentDir() string { return filepath.Join(p.WordPressDir(), "wp-content") }
func (p *envPaths) PluginDir() string {
	return filepath.Join(p.ContentDir(), "plugins", PluginDirName)
}
func (p *envPaths) DropInPath() string  { return filepath.Join(p.ContentDir(), DropInFileName) }
func (p *envPaths) DatabaseDir() string { return filepath.Join(p.ContentDir(), "database") }
func (p *envPaths) DatabasePath() string {
	return filepath.Join(p.DatabaseDir(), DatabaseFileName)
}
func (p *envPaths) SnapshotDir() string { return filepath.Join(p.root, SnapshotDirName) }
func (p *envPaths) BaselinePath() string {
	return filepath.Join(p.SnapshotDir(), BaselineFileName)
}
func (p *envPaths) BaselineMetaPath() string {
	return filepath.Join(p.SnapshotDir(), BaselineMetaFileName)
}
func (p *envPaths) CacheDir() string { return filepath.Join(p.root, CacheDirName) }
