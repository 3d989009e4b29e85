// Package cmd implements the postcheck command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/postcheck/pkg/config"
	"github.com/zfogg/postcheck/pkg/logger"
	"github.com/zfogg/postcheck/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "postcheck",
	Short: "Check a social media post for legal and reputational risk",
	Long: `postcheck scores a draft post against the speech laws and cultural
norms of the country it will be read in, before you publish it.

Analyses run on a postcheck server by default; --local scores the post
in-process with the keyword heuristic.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (want text or json)", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/postcheck/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(jurisdictionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
