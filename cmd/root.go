// Package cmd provides CLI commands for the rockin event engine.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rockin",
	Short: "Rockin - desktop mascot event engine",
	Long: `Rockin is the autonomous event engine behind the rockin desktop mascot.

It schedules the sprite's autonomous behaviors (jokes, naps, weather
reports, ...), enforces the single-active-event rule, and manages the
interactability flags shared with user-driven interaction.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")
}

func Execute() error {
	return rootCmd.Execute()
}
