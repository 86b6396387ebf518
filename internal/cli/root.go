package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "riposte",
	Short:   "A declarative client for REST APIs",
	Version: version,
	Long: `Riposte builds HTTP API clients from a declarative route tree: groups
carry shared URL prefixes, headers, auth, and response handling, and
endpoints inherit whatever they don't override. Define the tree in a
YAML or JSON file, then invoke routes by dotted name.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute runs the root command. Called by main.main(); the error decides
// the exit code.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	// Add subcommands to root command
	RootCmd.AddCommand(callCmd)
	RootCmd.AddCommand(routesCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(benchCmd)
}
