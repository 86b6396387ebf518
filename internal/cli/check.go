package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/config"
	"github.com/wesleyorama2/riposte/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a definition file without making requests",
	Long: `Parse and validate a definition file, reporting every problem with the
dotted path of the field that caused it. Exits non-zero when the file
has problems.

Example:
  riposte check -c api.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		runCheck(cmd)
	},
}

func runCheck(cmd *cobra.Command) {
	configFile, _ := cmd.Flags().GetString("config")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = noColor || output.AutoNoColor(os.Stdout)

	if configFile == "" {
		fmt.Fprintln(os.Stderr, "Error: config file is required")
		os.Exit(1)
	}

	def, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(noColor), err)
		os.Exit(1)
	}

	problems := config.Validate(def)
	if len(problems) == 0 {
		fmt.Printf("%s %s is valid\n", output.SuccessIcon(noColor), configFile)
		return
	}

	for _, p := range problems {
		fmt.Printf("%s %s\n", output.ErrorIcon(noColor), p.Error())
	}
	fmt.Printf("\n%d problem(s) found\n", len(problems))
	os.Exit(1)
}

func init() {
	// Add flags to CHECK command
	checkCmd.Flags().StringP("config", "c", "", "Definition file (required)")
	checkCmd.Flags().Bool("no-color", false, "Disable colored output")
}
