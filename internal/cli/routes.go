package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/internal/output"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List every route a definition file exposes",
	Long: `List the endpoints of a definition file as a table of dotted name,
allowed methods, and URL template. Verbose adds required parameters;
--json emits the listing for tooling.

Examples:
  riposte routes -c api.yaml
  riposte routes -c api.yaml -v
  riposte routes -c api.yaml --json`,
	Run: func(cmd *cobra.Command, args []string) {
		runRoutes(cmd)
	},
}

func runRoutes(cmd *cobra.Command) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = noColor || output.AutoNoColor(os.Stdout)

	client := buildClient(cmd)
	routes := client.Routes()

	if jsonOutput {
		out, err := json.MarshalIndent(routes, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	formatter := output.NewFormatter(verbose, noColor)
	fmt.Print(formatter.FormatRoutes(routes))
}

func init() {
	// Add flags to ROUTES command
	routesCmd.Flags().StringP("config", "c", "", "Definition file (required)")
	routesCmd.Flags().StringArray("var", []string{}, "Override a {{variable}} as key=value (can be used multiple times)")
	routesCmd.Flags().Bool("json", false, "Output the route list as JSON")
	routesCmd.Flags().BoolP("verbose", "v", false, "Show required parameters")
	routesCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	routesCmd.Flags().Bool("no-color", false, "Disable colored output")
}
