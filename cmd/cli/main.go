package main

import (
	"fmt"
	"os"

	"github.com/nimasrn/card-gateway/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envPath string

	rootCmd := &cobra.Command{
		Use:     "cardctl",
		Short:   "Operate the card gateway storage",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envPath != "" {
				if _, err := os.Stat(envPath); err != nil {
					return fmt.Errorf("env file: %w", err)
				}
			}
			return config.Load(envPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "path to a .env file")

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newClearCommand(),
		newCardsCommand(),
		newToggleCommand("freeze", "Toggle the frozen flag of a card", toggleFreeze),
		newToggleCommand("show-number", "Toggle whether a card's full number is shown", toggleNumber),
	)

	return rootCmd
}
