package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time by -ldflags, matching the teacher's
// own convention for cmd/dwscript's rootCmd.Version.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:     "wakecore",
	Short:   "Lazy resolver/evaluator core for a build-oriented functional scripting language",
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a wakecore.yaml run configuration")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized diagnostic output")
}
