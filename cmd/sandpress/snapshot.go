package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/filesystem"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: MsgSnapshotShort,
		Long:  MsgSnapshotLong,
	}
	cmd.AddCommand(newSnapshotCaptureCmd())
	cmd.AddCommand(newSnapshotRestoreCmd())
	cmd.AddCommand(newSnapshotCleanCmd())
	return cmd
}

func newSnapshotCaptureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture",
		Short: "Capture the baseline snapshot from the live database",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return fail(err)
			}

			engine := env.snapshotEngine()
			if err := engine.Initialize(); err != nil {
				return fail(err)
			}

			meta, err := engine.BaselineMetadata()
			if err != nil {
				return fail(err)
			}
			fmt.Println("Baseline snapshot ready.")
			fmt.Printf("  captured: %s\n", meta.CapturedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Printf("  source:   %s\n", meta.Source)
			fmt.Printf("  sha256:   %s\n", meta.SHA256)
			return nil
		},
	}
}

func newSnapshotRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the live database from the baseline snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return fail(err)
			}

			if !filesystem.Exists(env.fs, env.paths.BaselinePath()) {
				return fail(errors.New(errors.ErrNoBaseline,
					"no baseline snapshot exists; run 'sandpress snapshot capture' first"))
			}

			engine := env.snapshotEngine()
			// re-attach to the baseline captured earlier in this run
			if err := engine.Initialize(); err != nil {
				return fail(err)
			}
			if err := engine.RestoreSnapshot(); err != nil {
				return fail(err)
			}
			fmt.Println("Live database restored to baseline.")
			return nil
		},
	}
}

func newSnapshotCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the baseline snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return fail(err)
			}
			if err := env.snapshotEngine().Cleanup(); err != nil {
				return fail(err)
			}
			fmt.Println("Baseline snapshot removed.")
			return nil
		},
	}
}
