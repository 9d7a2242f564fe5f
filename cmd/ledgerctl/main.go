// Command ledgerctl runs ledger and search maintenance tasks against the production stores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Ledger and search sync maintenance",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config/ledger.env", "Path to the .env file loaded when APP_ENV=local")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Report format (text, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(splitFeesCmd(opts))
	rootCmd.AddCommand(settlementCmd(opts))
	rootCmd.AddCommand(triggersCmd(opts))
	rootCmd.AddCommand(reindexCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
