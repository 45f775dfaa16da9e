package main

import (
	"path/filepath"

	"github.com/sandpress/sandpress/pkg/config"
	"github.com/sandpress/sandpress/pkg/filesystem"
	"github.com/sandpress/sandpress/pkg/paths"
	"github.com/sandpress/sandpress/pkg/provision"
	"github.com/sandpress/sandpress/pkg/snapshot"
	"github.com/sandpress/sandpress/pkg/types"
)

// environment bundles everything a command needs to operate on one
// managed environment root.
type environment struct {
	fs    types.FS
	paths paths.Paths
	cfg   config.Config
}

// newEnvironment resolves paths and config from the global flags.
func newEnvironment() (*environment, error) {
	p, err := paths.New(rootFlag)
	if err != nil {
		return nil, err
	}

	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = filepath.Join(p.Root(), "sandpress.toml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	return &environment{fs: filesystem.NewOS(), paths: p, cfg: cfg}, nil
}

func (e *environment) orchestrator() *provision.Orchestrator {
	return provision.New(e.fs, e.paths, e.cfg)
}

func (e *environment) snapshotEngine() *snapshot.Engine {
	return snapshot.NewEngine(e.fs, e.paths)
}
