package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "install",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return fail(err)
			}

			orch := env.orchestrator()
			if !force {
				installed, err := orch.IsInstalled()
				if err != nil {
					return fail(err)
				}
				if installed {
					fmt.Println("Environment already provisioned.")
					fmt.Printf("  root: %s\n", env.paths.Root())
					return nil
				}
			}

			if err := orch.Install(force, progressReporter()); err != nil {
				return fail(err)
			}

			fmt.Println("Environment ready.")
			fmt.Printf("  install path: %s\n", orch.InstallPath())
			fmt.Printf("  database:     %s\n", orch.DatabasePath())
			fmt.Printf("  config:       %s\n", orch.ConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinstall even if the environment is already provisioned")
	return cmd
}

// progressReporter renders pipeline progress. Interactive terminals get
// a pterm progress bar; everything else gets plain step lines.
func progressReporter() func(message string, step, total int) {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return func(message string, step, total int) {
			fmt.Printf("[%d/%d] %s\n", step, total, message)
		}
	}

	var bar *pterm.ProgressbarPrinter
	return func(message string, step, total int) {
		if bar == nil {
			bar, _ = pterm.DefaultProgressbar.WithTotal(total).WithTitle(message).Start()
		} else {
			bar.Increment()
			bar.UpdateTitle(message)
		}
		if step == total {
			_, _ = bar.Stop()
			pterm.Info.Println(message)
		}
	}
}
