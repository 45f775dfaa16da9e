// Package snapshot implements per-test database isolation. The
// embedded persistence driver wraps every statement in its own implicit
// commit, which makes transactional rollback unreachable; the one
// isolation mechanism that stays both correct and fast is to treat the
// whole database file as an opaque blob, snapshot it once, and restore
// it wholesale around every test.
//
// The engine assumes it is the sole writer of the live database file
// between tests. Running two test processes against the same
// environment is outside the isolation guarantee; give each parallel
// worker its own environment root and its own baseline.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/types"
)

var log = logging.GetLogger("snapshot")

// Metadata is the sidecar record written next to the baseline. It lets
// a later engine instance re-attach to an existing baseline and makes
// corruption diagnosable.
type Metadata struct {
	CapturedAt time.Time `yaml:"captured_at"`
	Source     string    `yaml:"source"`
	SHA256     string    `yaml:"sha256"`
}

// Engine captures one baseline snapshot per run and restores it before
// and after every test. Create one handle per test run and thread it
// through the lifecycle hooks; there is no package-level state.
type Engine struct {
	fs          types.FS
	paths       paths.Paths
	initialized bool
}

// NewEngine creates an Engine for the environment at p.
func NewEngine(fsys types.FS, p paths.Paths) *Engine {
	return &Engine{fs: fsys, paths: p}
}

// IsInitialized reports whether a baseline has been captured.
func (e *Engine) IsInitialized() bool {
	return e.initialized
}

// Initialize captures the baseline snapshot from the live database
// file. It is idempotent: a baseline left by an earlier call, or by
// an earlier engine instance in the same run, is never recaptured. A
// recapture would bake in mutations from whatever ran first and
// defeat isolation for every later test.
func (e *Engine) Initialize() error {
	if e.initialized {
		return nil
	}

	if filesystem.Exists(e.fs, e.paths.BaselinePath()) {
		if err := e.ensureMetadata(); err != nil {
			return err
		}
		log.Debug().Str("path", e.paths.BaselinePath()).Msg("Re-attached to existing baseline")
		e.initialized = true
		return nil
	}

	live := e.paths.DatabasePath()
	if !filesystem.Exists(e.fs, live) {
		return errors.Newf(errors.ErrNotProvisioned,
			"live database file %s does not exist: environment not provisioned", live).
			WithDetail("path", live)
	}

	if err := e.fs.MkdirAll(e.paths.SnapshotDir(), filesystem.DirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create snapshot directory %s", e.paths.SnapshotDir())
	}
	if err := filesystem.CopyFile(e.fs, live, e.paths.BaselinePath()); err != nil {
		return err
	}
	if err := e.writeMetadata(); err != nil {
		// don't leave a baseline without its sidecar
		_ = e.fs.Remove(e.paths.BaselinePath())
		return err
	}

	log.Info().Str("path", e.paths.BaselinePath()).Msg("Baseline snapshot captured")
	e.initialized = true
	return nil
}

// RestoreSnapshot copies the baseline back over the live database
// file. It is called both immediately before and immediately after
// every test body, may run an unbounded number of times, and always
// reproduces the one true baseline: never "the state at last restore".
// The cost is a single file copy, independent of how many tests ran.
func (e *Engine) RestoreSnapshot() error {
	if !e.initialized {
		return errors.New(errors.ErrNoBaseline,
			"restore called before a baseline was captured: call Initialize first")
	}
	if !filesystem.Exists(e.fs, e.paths.BaselinePath()) {
		return errors.Newf(errors.ErrNoBaseline,
			"baseline snapshot %s is gone: cannot restore", e.paths.BaselinePath())
	}

	if err := filesystem.CopyFile(e.fs, e.paths.BaselinePath(), e.paths.DatabasePath()); err != nil {
		return err
	}
	log.Debug().Msg("Baseline restored")
	return nil
}

// Cleanup deletes the baseline at the end of the run. Afterwards the
// engine is uninitialized and a fresh Initialize would capture a new
// baseline from whatever the live file then contains.
func (e *Engine) Cleanup() error {
	for _, path := range []string{e.paths.BaselinePath(), e.paths.BaselineMetaPath()} {
		if err := e.fs.Remove(path); err != nil && filesystem.Exists(e.fs, path) {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", path)
		}
	}
	e.initialized = false
	log.Debug().Msg("Baseline snapshot cleaned up")
	return nil
}

// BaselineMetadata reads the sidecar record.
func (e *Engine) BaselineMetadata() (Metadata, error) {
	var meta Metadata
	data, err := e.fs.ReadFile(e.paths.BaselineMetaPath())
	if err != nil {
		return meta, errors.Wrap(err, errors.ErrNoBaseline, "cannot read baseline metadata")
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, errors.Wrap(err, errors.ErrInternal, "corrupt baseline metadata")
	}
	return meta, nil
}

func (e *Engine) writeMetadata() error {
	data, err := e.fs.ReadFile(e.paths.BaselinePath())
	if err != nil {
		return errors.Wrap(err, errors.ErrFileRead, "cannot read baseline for checksum")
	}
	sum := sha256.Sum256(data)

	meta := Metadata{
		CapturedAt: time.Now().UTC(),
		Source:     e.paths.DatabasePath(),
		SHA256:     hex.EncodeToString(sum[:]),
	}
	out, err := yaml.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode baseline metadata")
	}
	if err := e.fs.WriteFile(e.paths.BaselineMetaPath(), out, filesystem.FileMode); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write baseline metadata")
	}
	return nil
}

// ensureMetadata backfills a missing sidecar for a pre-existing
// baseline so diagnostics keep working after a partial cleanup.
func (e *Engine) ensureMetadata() error {
	if filesystem.Exists(e.fs, e.paths.BaselineMetaPath()) {
		return nil
	}
	return e.writeMetadata()
}
