package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte"
	"github.com/wesleyorama2/riposte/internal/bench"
	"github.com/wesleyorama2/riposte/internal/output"
)

var benchCmd = &cobra.Command{
	Use:   "bench ROUTE",
	Short: "Benchmark a route with concurrent requests",
	Long: `Invoke one route repeatedly with a bounded worker pool and report the
latency distribution. Failed requests are counted, not fatal.

Examples:
  riposte bench todos.all -c api.yaml -n 500 -C 10
  riposte bench todos.one -c api.yaml -p id=7 --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBench(cmd, args[0])
	},
}

func runBench(cmd *cobra.Command, routeName string) {
	requests, _ := cmd.Flags().GetInt("requests")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	paramFlags, _ := cmd.Flags().GetStringArray("param")
	methodFlag, _ := cmd.Flags().GetString("method")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noColor = noColor || output.AutoNoColor(os.Stdout)

	client := buildClient(cmd)

	route, err := client.Lookup(routeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	params, err := parseParams(paramFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var method riposte.Method
	if methodFlag != "" {
		method, err = riposte.ParseMethod(methodFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	opts := bench.Options{
		Requests:    requests,
		Concurrency: concurrency,
		Method:      method,
		Params:      params,
	}

	if !jsonOutput {
		fmt.Printf("%s benchmarking %s: %d requests, %d workers\n\n",
			output.InfoIcon(noColor), routeName, requests, concurrency)
	}

	summary, err := bench.Run(context.Background(), route, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	formatter := output.NewFormatter(false, noColor)
	fmt.Print(formatter.FormatSummary(summary))
	if summary.Errors > 0 {
		fmt.Printf("\n%s %d of %d requests failed\n",
			output.WarningIcon(noColor), summary.Errors, summary.Total)
	}
}

func init() {
	// Add flags to BENCH command
	benchCmd.Flags().StringP("config", "c", "", "Definition file (required)")
	benchCmd.Flags().IntP("requests", "n", bench.DefaultRequests, "Total number of requests")
	benchCmd.Flags().IntP("concurrency", "C", bench.DefaultConcurrency, "Number of concurrent workers")
	benchCmd.Flags().StringArrayP("param", "p", []string{}, "Invocation parameter as key=value (can be used multiple times)")
	benchCmd.Flags().StringP("method", "X", "", "HTTP method (default: the endpoint's first allowed method)")
	benchCmd.Flags().StringArray("var", []string{}, "Override a {{variable}} as key=value (can be used multiple times)")
	benchCmd.Flags().Bool("json", false, "Output the summary as JSON")
	benchCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	benchCmd.Flags().Bool("no-color", false, "Disable colored output")
}
