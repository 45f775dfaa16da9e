// Package provision sequences the environment install pipeline:
// runtime archive, persistence driver, bootstrap config. It is the only
// component that may destructively reinstall, and the one callers ask
// "is the environment ready?" without side effects.
package provision

import (
	"github.com/sandpress/sandpress/pkg/config"
	"github.com/sandpress/sandpress/pkg/driver"
	"github.com/sandpress/sandpress/pkg/fetch"
	"github.com/sandpress/sandpress/pkg/logging"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/types"
	"github.com/sandpress/sandpress/pkg/wordpress"
	"github.com/sandpress/sandpress/pkg/wpconfig"
)

var log = logging.GetLogger("provision")

// step is one pipeline stage with its progress message.
type step struct {
	message   string
	installer types.Installer
}

// Orchestrator runs the three-step install pipeline.
type Orchestrator struct {
	paths paths.Paths
	steps []step
}

// New wires an Orchestrator from the real components.
func New(fsys types.FS, p paths.Paths, cfg config.Config) *Orchestrator {
	client := fetch.New(fsys, p.CacheDir(), cfg.Timeout())
	return newWithSteps(p, []step{
		{"Installing WordPress", wordpress.NewFetcher(fsys, p, client, cfg.WordPress)},
		{"Installing SQLite persistence driver", driver.NewInstaller(fsys, p, client, cfg.Driver)},
		{"Generating bootstrap configuration", wpconfig.NewGenerator(fsys, p)},
	})
}

func newWithSteps(p paths.Paths, steps []step) *Orchestrator {
	return &Orchestrator{paths: p, steps: steps}
}

// IsInstalled reports whether the environment is fully provisioned:
// every pipeline step must report installed. No side effects.
func (o *Orchestrator) IsInstalled() (bool, error) {
	for _, s := range o.steps {
		installed, err := s.installer.IsInstalled()
		if err != nil {
			return false, err
		}
		if !installed {
			return false, nil
		}
	}
	return true, nil
}

// Install runs the pipeline in order, reporting each step through
// onProgress before it begins. Steps are strictly sequential: each
// depends on its predecessor's output paths. A step failure aborts the
// pipeline and is returned verbatim so the caller can tell which stage
// failed from its error code.
func (o *Orchestrator) Install(force bool, onProgress types.ProgressFunc) error {
	if onProgress == nil {
		onProgress = types.NopProgress
	}

	total := len(o.steps)
	for i, s := range o.steps {
		onProgress(s.message, i+1, total)
		log.Info().Int("step", i+1).Int("total", total).Msg(s.message)

		if err := s.installer.Install(force); err != nil {
			log.Error().Err(err).Int("step", i+1).Msg("Install step failed")
			return err
		}
	}

	log.Info().Str("root", o.paths.Root()).Msg("Environment provisioned")
	return nil
}

// InstallPath returns the root of the installed runtime tree.
func (o *Orchestrator) InstallPath() string { return o.paths.WordPressDir() }

// DatabasePath returns the managed database file path.
func (o *Orchestrator) DatabasePath() string { return o.paths.DatabasePath() }

// ConfigPath returns the generated bootstrap config path.
func (o *Orchestrator) ConfigPath() string { return o.paths.ConfigPath() }
