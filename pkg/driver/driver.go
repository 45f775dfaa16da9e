// Package driver installs the SQLite persistence driver into the
// runtime tree: the plugin itself, the generated db.php drop-in that
// binds WordPress to the managed database file, and the protected
// database directory.
package driver

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sandpress/sandpress/pkg/archive"
	"github.com/sandpress/sandpress/pkg/config"
	"github.com/sandpress/sandpress/pkg/database"
	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/fetch"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("driver")

// templateFileName is the drop-in template the upstream plugin ships.
// Its presence is how we verify the plugin layout has not changed; the
// actual drop-in is generated from scratch, never copied from it.
const templateFileName = "db.copy"

// entryFileName is the plugin's load entry point.
const entryFileName = "load.php"

// Installer installs the persistence driver and generates the drop-in.
type Installer struct {
	fs     types.FS
	paths  paths.Paths
	client *fetch.Client
	cfg    config.DriverConfig

	// InitDatabase pre-creates the managed database file. It defaults
	// to database.Ensure and is only overridden by tests that run
	// against a filesystem fake.
	InitDatabase func(path string) error
}

// NewInstaller creates an Installer.
func NewInstaller(fsys types.FS, p paths.Paths, client *fetch.Client, cfg config.DriverConfig) *Installer {
	return &Installer{
		fs:           fsys,
		paths:        p,
		client:       client,
		cfg:          cfg,
		InitDatabase: database.Ensure,
	}
}

// IsInstalled reports whether the generated drop-in exists.
func (i *Installer) IsInstalled() (bool, error) {
	return filesystem.Exists(i.fs, i.paths.DropInPath()), nil
}

// Install fetches the driver plugin, verifies its layout, generates the
// drop-in, and prepares the protected database directory. Re-running it
// is always safe: the drop-in is regenerated, never edited.
func (i *Installer) Install(force bool) error {
	installed, err := i.IsInstalled()
	if err != nil {
		return err
	}
	if installed && !force {
		log.Debug().Msg("Persistence driver already installed")
		return nil
	}

	url := i.resolveArchiveURL()

	scratch, err := i.client.Download(url)
	if err != nil {
		return err
	}
	defer func() { _ = i.fs.Remove(scratch) }()

	extractDir := filepath.Join(i.paths.CacheDir(), "extract-"+uuid.NewString())
	defer func() { _ = i.fs.RemoveAll(extractDir) }()

	if err := archive.Extract(i.fs, scratch, extractDir); err != nil {
		return err
	}

	// archives from this source nest everything under one synthetic
	// root directory that must be stripped
	pluginRoot, err := archive.SingleRoot(i.fs, extractDir)
	if err != nil {
		return err
	}

	if !filesystem.Exists(i.fs, filepath.Join(pluginRoot, templateFileName)) {
		return errors.Newf(errors.ErrTemplateMissing,
			"driver archive has no %s template: upstream plugin structure changed", templateFileName)
	}

	if filesystem.Exists(i.fs, i.paths.PluginDir()) {
		if err := i.fs.RemoveAll(i.paths.PluginDir()); err != nil {
			return errors.Wrap(err, errors.ErrMove, "cannot remove previous driver installation")
		}
	}
	if err := i.fs.MkdirAll(filepath.Dir(i.paths.PluginDir()), filesystem.DirMode); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create plugins directory")
	}
	if err := filesystem.MoveDir(i.fs, pluginRoot, i.paths.PluginDir()); err != nil {
		return err
	}

	if err := i.writeDropIn(); err != nil {
		return err
	}
	if err := i.prepareDatabaseDir(); err != nil {
		return err
	}

	log.Info().Str("plugin", i.paths.PluginDir()).Str("dropin", i.paths.DropInPath()).
		Msg("Persistence driver installed")
	return nil
}

// resolveArchiveURL asks the release-metadata endpoint for the latest
// driver archive, falling back to the default-branch archive when the
// metadata endpoint is unreachable. A metadata outage must not block
// installing some working version.
func (i *Installer) resolveArchiveURL() string {
	var release struct {
		TagName    string `json:"tag_name"`
		ZipballURL string `json:"zipball_url"`
	}
	if err := i.client.GetJSON(i.cfg.MetadataURL, &release); err != nil {
		log.Warn().Err(err).Msg("Release metadata unavailable, falling back to default branch archive")
		return i.cfg.FallbackURL
	}
	if release.ZipballURL == "" {
		log.Warn().Msg("Release metadata carried no archive URL, falling back to default branch archive")
		return i.cfg.FallbackURL
	}
	log.Info().Str("release", release.TagName).Msg("Resolved latest driver release")
	return release.ZipballURL
}

// writeDropIn generates the db.php drop-in from scratch. It declares
// the managed database file location and the driver entry file path,
// then requires the entry file only if it exists, so a missing plugin
// degrades to WordPress's own error handling instead of a fatal.
func (i *Installer) writeDropIn() error {
	content := renderDropIn(i.paths.DatabaseDir(), paths.DatabaseFileName,
		filepath.Join(i.paths.PluginDir(), entryFileName))

	if err := i.fs.WriteFile(i.paths.DropInPath(), []byte(content), filesystem.FileMode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write drop-in %s", i.paths.DropInPath())
	}
	return nil
}

// prepareDatabaseDir creates the database directory, shields it from
// public access with a deny-all marker, and pre-creates the database
// file so the snapshot engine has a live file before first boot. The
// marker is defense in depth, independent of the runtime's own checks.
func (i *Installer) prepareDatabaseDir() error {
	if err := i.fs.MkdirAll(i.paths.DatabaseDir(), filesystem.DirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create database directory %s", i.paths.DatabaseDir())
	}

	htaccess := filepath.Join(i.paths.DatabaseDir(), ".htaccess")
	if err := i.fs.WriteFile(htaccess, []byte("DENY FROM ALL\n"), filesystem.FileMode); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write deny-all marker")
	}
	index := filepath.Join(i.paths.DatabaseDir(), "index.php")
	if err := i.fs.WriteFile(index, []byte("<?php // Silence is golden.\n"), filesystem.FileMode); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write index placeholder")
	}

	if !filesystem.Exists(i.fs, i.paths.DatabasePath()) {
		if err := i.InitDatabase(i.paths.DatabasePath()); err != nil {
			return err
		}
	}
	return nil
}
