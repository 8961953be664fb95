package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atena",
	Short: "Atena - rule-governed business analysis agent",
	Long: `Atena is a conversational business analysis agent whose behavior is
governed by a declarative rule catalog.

Rules fall into four categories:
  - ALWAYS: mandatory behaviors applied on every turn
  - NEVER: prohibitions enforced on every turn
  - IF: conditional behaviors triggered by the conversation state
  - SITUATIONAL: advisory guidance admitted within a per-turn budget

Every response ends with a trace of the rules that governed it, and each
turn can be recorded to an auditable evidence store.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
