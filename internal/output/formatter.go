// Package output renders invocation results, route tables, and benchmark
// summaries for the terminal.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	http "github.com/wesleyorama2/riposte/http"

	"github.com/wesleyorama2/riposte"
	"github.com/wesleyorama2/riposte/internal/bench"
)

// Formatter renders text output. Verbose adds headers and required-parameter
// detail; NoColor strips ANSI colors for pipes and dumb terminals.
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatRequestLine renders the invocation line printed before a call.
func (f *Formatter) FormatRequestLine(method riposte.Method, url string) string {
	return fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(string(method)),
		f.scheme.URL.Sprint(url))
}

// FormatResult renders whatever an invocation returned. Response handlers
// produce different shapes: the JSON handlers return *riposte.Decoded, the
// pass-through handlers return the raw *http.Response.
func (f *Formatter) FormatResult(v interface{}) string {
	switch r := v.(type) {
	case *riposte.Decoded:
		return f.FormatDecoded(r)
	case *http.Response:
		return f.FormatResponse(r)
	case nil:
		return ""
	default:
		return formatValue(r) + "\n"
	}
}

// FormatResponse formats a raw HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	status := f.scheme.StatusError
	if resp.IsSuccess() {
		status = f.scheme.StatusOK
	} else if resp.IsRedirect() {
		status = f.scheme.StatusWarn
	}

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%s)\n",
		status.Sprint(resp.Status),
		formatDuration(resp.Duration)))

	if f.Verbose {
		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(resp.Headers))
		for key := range resp.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range resp.Headers[key] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n",
					f.scheme.HeaderKey.Sprint(key),
					f.scheme.HeaderValue.Sprint(value)))
			}
		}
	}

	if body := resp.BodyString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString("  " + formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatDecoded formats a handler-decoded result: the status code plus the
// body re-encoded as indented JSON.
func (f *Formatter) FormatDecoded(d *riposte.Decoded) string {
	var buf strings.Builder

	status := f.scheme.StatusOK
	if d.Code >= 400 {
		status = f.scheme.StatusError
	}
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s\n", status.Sprintf("%d", d.Code)))

	if d.Body != nil {
		buf.WriteString("  Body:\n")
		buf.WriteString("  " + formatValue(d.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatRoutes renders the route table, one line per endpoint. Verbose
// appends each endpoint's required parameters.
func (f *Formatter) FormatRoutes(routes []riposte.RouteInfo) string {
	nameW := len("ROUTE")
	methodW := len("METHODS")
	methodCols := make([]string, len(routes))
	for i, r := range routes {
		methodCols[i] = methodList(r.Methods)
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
		if len(methodCols[i]) > methodW {
			methodW = len(methodCols[i])
		}
	}

	var buf strings.Builder
	header := fmt.Sprintf("%-*s  %-*s  %s", nameW, "ROUTE", methodW, "METHODS", "URL")
	buf.WriteString(f.scheme.Highlight.Sprint(header))
	buf.WriteString("\n")
	for i, r := range routes {
		buf.WriteString(fmt.Sprintf("%-*s  %-*s  %s", nameW, r.Name, methodW, methodCols[i], r.Path))
		if f.Verbose && len(r.Required) > 0 {
			buf.WriteString(fmt.Sprintf("  (requires %s)", strings.Join(r.Required, ", ")))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// FormatSummary renders a finished benchmark run.
func (f *Formatter) FormatSummary(s *bench.Summary) string {
	var buf strings.Builder
	line := strings.Repeat("━", 56)

	buf.WriteString(f.scheme.URL.Sprint(line) + "\n")
	buf.WriteString(fmt.Sprintf("%s %s\n",
		f.scheme.Highlight.Sprint(s.Route),
		f.scheme.Method.Sprint(string(s.Method))))
	buf.WriteString(f.scheme.URL.Sprint(line) + "\n\n")

	buf.WriteString(fmt.Sprintf("Run ID:        %s\n", s.RunID))
	buf.WriteString(fmt.Sprintf("Duration:      %s\n", formatDuration(s.Duration)))
	buf.WriteString(fmt.Sprintf("Total Reqs:    %s\n", formatNumber(int64(s.Total))))

	successRate := 1.0 - s.ErrorRate()
	rateColor := f.scheme.Success
	if successRate < 0.99 {
		rateColor = f.scheme.StatusWarn
	}
	if successRate < 0.95 {
		rateColor = f.scheme.Error
	}
	buf.WriteString(fmt.Sprintf("Success Rate:  %s\n", rateColor.Sprintf("%.1f%%", successRate*100)))
	buf.WriteString(fmt.Sprintf("Throughput:    %.1f req/s\n", s.RPS))
	buf.WriteString("\n")

	buf.WriteString(f.scheme.Highlight.Sprint("Latency Distribution:") + "\n")
	buf.WriteString(fmt.Sprintf("  Min:       %s\n", formatDurationShort(s.Min)))
	buf.WriteString(fmt.Sprintf("  Mean:      %s\n", formatDurationShort(s.Mean)))
	buf.WriteString(fmt.Sprintf("  P50:       %s\n", formatDurationShort(s.P50)))
	buf.WriteString(fmt.Sprintf("  P90:       %s\n", formatDurationShort(s.P90)))
	buf.WriteString(fmt.Sprintf("  P95:       %s\n", formatDurationShort(s.P95)))
	buf.WriteString(fmt.Sprintf("  P99:       %s\n", formatDurationShort(s.P99)))
	buf.WriteString(fmt.Sprintf("  Max:       %s\n", formatDurationShort(s.Max)))

	return buf.String()
}

func methodList(methods []riposte.Method) string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return strings.Join(names, ",")
}

// formatValue renders a decoded body: strings as-is, everything else as
// indented JSON.
func formatValue(v interface{}) string {
	switch body := v.(type) {
	case string:
		return body
	default:
		pretty, err := json.MarshalIndent(body, "  ", "  ")
		if err != nil {
			return fmt.Sprintf("%v", body)
		}
		return string(pretty)
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

// formatDuration formats a duration for the summary lines.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}

// formatDurationShort formats a duration in a short format.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}
