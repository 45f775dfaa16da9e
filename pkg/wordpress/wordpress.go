// Package wordpress acquires the runtime distribution: it downloads a
// versioned WordPress archive, verifies the installed version, and
// idempotently no-ops when the target is already current. The final
// install path is only ever populated through an atomic move, so a
// partially extracted tree is never visible as an installation.
package wordpress

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sandpress/sandpress/pkg/archive"
	"github.com/sandpress/sandpress/pkg/config"
	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/fetch"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("wordpress")

// archiveRootName is the top-level folder every WordPress archive nests
// its content under.
const archiveRootName = "wordpress"

// Fetcher downloads and installs the WordPress runtime tree.
type Fetcher struct {
	fs     types.FS
	paths  paths.Paths
	client *fetch.Client
	cfg    config.WordPressConfig
}

// NewFetcher creates a Fetcher.
func NewFetcher(fsys types.FS, p paths.Paths, client *fetch.Client, cfg config.WordPressConfig) *Fetcher {
	return &Fetcher{fs: fsys, paths: p, client: client, cfg: cfg}
}

// IsInstalled reports whether a complete runtime tree is present. It is
// true iff the bootstrap file exists at the install path; partial
// extractions live under the cache dir and never trip this check.
func (f *Fetcher) IsInstalled() (bool, error) {
	return filesystem.Exists(f.fs, f.paths.BootstrapPath()), nil
}

// InstalledVersion parses the version marker inside the installed tree.
// It returns "" without error when no runtime is installed.
func (f *Fetcher) InstalledVersion() (string, error) {
	contents, err := f.fs.ReadFile(f.paths.VersionFilePath())
	if err != nil {
		installed, _ := f.IsInstalled()
		if !installed {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrFileRead, "cannot read version file")
	}
	return parseVersionFile(contents)
}

// LatestVersion asks the version-check endpoint for the newest release.
// This is a best-effort network call: callers treat a failure as "no
// update available", never as an install failure.
func (f *Fetcher) LatestVersion() (string, error) {
	var payload struct {
		Offers []struct {
			Version string `json:"version"`
		} `json:"offers"`
	}
	if err := f.client.GetJSON(f.cfg.VersionCheckURL, &payload); err != nil {
		return "", err
	}
	if len(payload.Offers) == 0 || payload.Offers[0].Version == "" {
		return "", errors.New(errors.ErrMetadata, "version-check response carried no offers")
	}
	return payload.Offers[0].Version, nil
}

// targetVersion resolves the version Install should end up with: the
// pinned version when configured, otherwise the latest release.
func (f *Fetcher) targetVersion() (string, error) {
	if f.cfg.Version != "" {
		return f.cfg.Version, nil
	}
	return f.LatestVersion()
}

// Install downloads and installs the runtime. When a current
// installation is already present and force is false, it returns
// without any network download.
func (f *Fetcher) Install(force bool) error {
	installed, err := f.IsInstalled()
	if err != nil {
		return err
	}

	if installed && !force {
		target, err := f.targetVersion()
		if err != nil {
			log.Warn().Err(err).Msg("Version check failed, treating installation as current")
			return nil
		}
		current, err := f.InstalledVersion()
		if err == nil && current != "" {
			if cmp, cmpErr := compareVersions(current, target); cmpErr == nil && cmp >= 0 {
				log.Debug().Str("version", current).Msg("WordPress already current")
				return nil
			}
		}
		log.Info().Str("current", current).Str("target", target).Msg("WordPress out of date, reinstalling")
	}

	url, err := f.archiveURL()
	if err != nil {
		return err
	}

	scratch, err := f.client.Download(url)
	if err != nil {
		return err
	}
	defer func() { _ = f.fs.Remove(scratch) }()

	extractDir := filepath.Join(f.paths.CacheDir(), "extract-"+uuid.NewString())
	defer func() { _ = f.fs.RemoveAll(extractDir) }()

	if err := archive.Extract(f.fs, scratch, extractDir); err != nil {
		return err
	}

	extractedRoot := filepath.Join(extractDir, archiveRootName)
	if !filesystem.Exists(f.fs, extractedRoot) {
		return errors.Newf(errors.ErrArchiveLayout,
			"archive did not contain the expected %q folder", archiveRootName)
	}

	if filesystem.Exists(f.fs, f.paths.WordPressDir()) {
		log.Info().Str("path", f.paths.WordPressDir()).Msg("Removing previous installation")
		if err := f.fs.RemoveAll(f.paths.WordPressDir()); err != nil {
			return errors.Wrap(err, errors.ErrMove, "cannot remove previous installation")
		}
	}

	if err := f.fs.MkdirAll(f.paths.Root(), filesystem.DirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", f.paths.Root())
	}
	if err := filesystem.MoveDir(f.fs, extractedRoot, f.paths.WordPressDir()); err != nil {
		return err
	}

	log.Info().Str("path", f.paths.WordPressDir()).Msg("WordPress installed")
	return nil
}

// archiveURL picks the download endpoint for the target version.
func (f *Fetcher) archiveURL() (string, error) {
	version := f.cfg.Version
	if version == "" {
		latest, err := f.LatestVersion()
		if err != nil {
			// metadata outage: fall back to the un-versioned archive
			log.Warn().Err(err).Msg("Version check failed, downloading latest archive directly")
			return f.cfg.LatestArchiveURL, nil
		}
		version = latest
	}
	if !strings.Contains(f.cfg.ArchiveURL, "{version}") {
		return "", errors.Newf(errors.ErrInvalidInput,
			"archive URL %q lacks a {version} placeholder", f.cfg.ArchiveURL)
	}
	return strings.ReplaceAll(f.cfg.ArchiveURL, "{version}", version), nil
}
