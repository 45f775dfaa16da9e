package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sandpress/sandpress/internal/version"
	"github.com/sandpress/sandpress/pkg/logging"
)

var (
	verbosity  int
	rootFlag   string
	configFlag string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sandpress",
		Short: "Disposable WordPress test environments with snapshot isolation",
		Long: `sandpress provisions a disposable, fully configured WordPress runtime
backed by a single-file SQLite database, and guarantees every automated
test observes a pristine database baseline regardless of what earlier
tests did to it.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Environment root directory (default: $SANDPRESS_ROOT or the XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to sandpress.toml")

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sandpress version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

// fail prints the error and returns it for cobra to propagate.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
