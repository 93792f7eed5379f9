// Package main provides the entry point for the dst data-structures tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

func main() {
	viper.SetEnvPrefix("dst")
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "dst",
		Short: "dst - reference-counted data structures workbench",
		Long: `dst exercises the reference-counted red-black tree library.

Commands:
  bench     Time insert/lookup/delete phases, optionally with leak tracking
  check     Build a tree from integer arguments and validate it`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newBenchCommand())
	rootCmd.AddCommand(newCheckCommand())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
