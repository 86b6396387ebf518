package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte"
	"github.com/wesleyorama2/riposte/config"
	http "github.com/wesleyorama2/riposte/http"
	"github.com/wesleyorama2/riposte/internal/output"
	"github.com/wesleyorama2/riposte/pkg/jsonpath"
)

var callCmd = &cobra.Command{
	Use:   "call ROUTE",
	Short: "Invoke a route by its dotted name",
	Long: `Invoke one route from a definition file. Parameters fill :name path
placeholders first; leftovers become query parameters, or the JSON body
for POST, PUT, and PATCH.

Examples:
  riposte call todos.one -c api.yaml -p id=7
  riposte call todos.create -c api.yaml -p title="write the report"
  riposte call todos.one -c api.yaml -p id=7 --extract $.title
  riposte call todos.one -c api.yaml -p id=7 --extract id=$.id --extract title=$.title
  riposte call search -c api.yaml -p q=urgent --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCall(cmd, args[0])
	},
}

func runCall(cmd *cobra.Command, routeName string) {
	paramFlags, _ := cmd.Flags().GetStringArray("param")
	methodFlag, _ := cmd.Flags().GetString("method")
	extracts, _ := cmd.Flags().GetStringArray("extract")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	timeout, _ := cmd.Flags().GetDuration("timeout")
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

	formatter := output.NewFormatter(verbose, noColor)

	if verbose && !jsonOutput {
		info := route.Info()
		shown := method
		if shown == "" && len(info.Methods) > 0 {
			shown = info.Methods[0]
		}
		fmt.Print(formatter.FormatRequestLine(shown, info.Path))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := route.Do(ctx, method, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(noColor), err)
		os.Exit(1)
	}

	if len(extracts) > 0 {
		value, err := extractFromResult(result, extracts, jsonOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(value)
		return
	}

	if jsonOutput {
		printResultJSON(result)
		return
	}

	fmt.Print(formatter.FormatResult(result))
}

// buildClient loads the definition named by --config, validates it, applies
// --var overrides and an explicit --timeout, and builds the client. Any
// failure is fatal.
func buildClient(cmd *cobra.Command) *riposte.Client {
	configFile, _ := cmd.Flags().GetString("config")
	varFlags, _ := cmd.Flags().GetStringArray("var")

	if configFile == "" {
		fmt.Fprintln(os.Stderr, "Error: config file is required")
		os.Exit(1)
	}

	def, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if problems := config.Validate(def); len(problems) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration validation errors:")
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "  - %s\n", p.Error())
		}
		os.Exit(1)
	}

	vars, err := parseVars(varFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(vars) > 0 {
		def.Expand(vars)
	}

	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		def.Timeout = config.Duration(timeout)
	}

	client, err := config.Build(def)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building client: %v\n", err)
		os.Exit(1)
	}
	return client
}

// parseParams turns repeated key=value flags into invocation parameters.
// Values stay strings; the executor renders them into paths, queries, and
// JSON bodies.
func parseParams(pairs []string) (riposte.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(riposte.Params, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", pair)
		}
		params[parts[0]] = parts[1]
	}
	return params, nil
}

// parseVars turns repeated key=value flags into {{name}} substitutions.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid variable %q (want key=value)", pair)
		}
		vars[parts[0]] = parts[1]
	}
	return vars, nil
}

// extractFromResult resolves --extract expressions against the result's body.
// A single bare JSONPath yields just its value; name=jsonpath entries yield
// one "name: value" line each, or a JSON object with --json.
func extractFromResult(result interface{}, exprs []string, jsonOutput bool) (string, error) {
	doc, err := resultDocument(result)
	if err != nil {
		return "", err
	}

	if len(exprs) == 1 && strings.HasPrefix(exprs[0], "$") {
		return jsonpath.Extract(doc, exprs[0])
	}

	paths := make(map[string]string, len(exprs))
	for _, expr := range exprs {
		if strings.HasPrefix(expr, "$") {
			paths[expr] = expr
			continue
		}
		parts := strings.SplitN(expr, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return "", fmt.Errorf("invalid extraction %q (want jsonpath or name=jsonpath)", expr)
		}
		paths[parts[0]] = parts[1]
	}

	values, err := jsonpath.ExtractMultiple(doc, paths)
	if err != nil {
		return "", err
	}

	if jsonOutput {
		encoded, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s: %s", name, values[name])
	}
	return sb.String(), nil
}

// resultDocument renders an invocation result back into a JSON document.
func resultDocument(result interface{}) (string, error) {
	switch r := result.(type) {
	case *riposte.Decoded:
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	case *http.Response:
		return r.BodyString(), nil
	default:
		encoded, err := json.Marshal(r)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// printResultJSON writes the result body as indented JSON for piping.
func printResultJSON(result interface{}) {
	doc, err := resultDocument(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var pretty json.RawMessage
	if json.Unmarshal([]byte(doc), &pretty) != nil {
		// Not JSON; print the raw text.
		fmt.Println(doc)
		return
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(doc)
		return
	}
	fmt.Println(string(out))
}

func init() {
	// Add flags to CALL command
	callCmd.Flags().StringP("config", "c", "", "Definition file (required)")
	callCmd.Flags().StringArrayP("param", "p", []string{}, "Invocation parameter as key=value (can be used multiple times)")
	callCmd.Flags().StringP("method", "X", "", "HTTP method (default: the endpoint's first allowed method)")
	callCmd.Flags().StringArray("var", []string{}, "Override a {{variable}} as key=value (can be used multiple times)")
	callCmd.Flags().StringArray("extract", []string{}, "JSONPath to extract from the response body, optionally as name=jsonpath (can be used multiple times)")
	callCmd.Flags().Bool("json", false, "Print the response body as JSON only")
	callCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	callCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	callCmd.Flags().Bool("no-color", false, "Disable colored output")
}
