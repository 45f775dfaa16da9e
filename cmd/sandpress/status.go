package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sandpress/sandpress/pkg/database"
	"github.com/sandpress/sandpress/pkg/filesystem"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: MsgStatusShort,
		Long:  MsgStatusLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return fail(err)
			}

			styled := isatty.IsTerminal(os.Stdout.Fd())
			mark := func(present bool) string {
				if present {
					if styled {
						return okStyle.Render("present")
					}
					return "present"
				}
				if styled {
					return missingStyle.Render("missing")
				}
				return "missing"
			}
			label := func(s string) string {
				if styled {
					return labelStyle.Render(s)
				}
				return s
			}

			p := env.paths
			fmt.Printf("%s %s\n", label("Environment root:"), p.Root())

			rows := []struct {
				name string
				path string
			}{
				{"WordPress runtime", p.BootstrapPath()},
				{"Persistence drop-in", p.DropInPath()},
				{"Driver plugin", p.PluginDir()},
				{"Bootstrap config", p.ConfigPath()},
				{"Database file", p.DatabasePath()},
				{"Baseline snapshot", p.BaselinePath()},
			}
			for _, row := range rows {
				fmt.Printf("  %-22s %s  %s\n", row.name, mark(filesystem.Exists(env.fs, row.path)), row.path)
			}

			if filesystem.Exists(env.fs, p.DatabasePath()) {
				health := "ok"
				if err := database.Verify(p.DatabasePath()); err != nil {
					health = "integrity check failed"
				}
				healthy := health == "ok"
				if styled {
					if healthy {
						health = okStyle.Render(health)
					} else {
						health = missingStyle.Render(health)
					}
				}
				fmt.Printf("  %-22s %s\n", "Database health", health)
			}

			installed, err := env.orchestrator().IsInstalled()
			if err != nil {
				return fail(err)
			}
			if installed {
				fmt.Printf("\n%s\n", label("Environment is fully provisioned."))
			} else {
				fmt.Printf("\n%s\n", label("Environment is not provisioned. Run 'sandpress install'."))
			}
			return nil
		},
	}
}
