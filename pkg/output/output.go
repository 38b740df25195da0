package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jwalton/go-supportscolor"

	"github.com/vertti/storecheck/pkg/check"
)

var (
	green = "\033[32m"
	red   = "\033[31m"
	dim   = "\033[2m"
	reset = "\033[0m"
)

func init() {
	if !supportscolor.Stdout().SupportsColor {
		green, red, dim, reset = "", "", "", ""
	}
}

// PrintResult writes a check result with colored status.
// Detail lines are aligned under the check name.
func PrintResult(w io.Writer, r check.Result) {
	var indent string
	if r.OK() {
		_, _ = fmt.Fprintf(w, "%s[OK]%s %s\n", green, reset, r.Name)
		indent = strings.Repeat(" ", len("[OK] "))
	} else {
		_, _ = fmt.Fprintf(w, "%s[FAIL]%s %s\n", red, reset, r.Name)
		indent = strings.Repeat(" ", len("[FAIL] "))
	}
	for _, d := range r.Details {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, formatLabel(d))
	}
	if !r.OK() && r.Err != nil && !containsDetail(r.Details, r.Err.Error()) {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, formatLabel("error: "+r.Err.Error()))
	}
}

// PrintSummary writes the aggregate line of a run.
func PrintSummary(w io.Writer, s check.Summary) {
	color := green
	if !s.OK() {
		color = red
	}
	_, _ = fmt.Fprintf(w, "%stotal: %d, passed: %d, failed: %d%s\n", color, s.Total, s.Passed, s.Failed, reset)
}

// PrintReport writes every result followed by the aggregate line.
func PrintReport(w io.Writer, results []check.Result) {
	for _, r := range results {
		PrintResult(w, r)
	}
	PrintSummary(w, check.Summarize(results))
}

type jsonCheck struct {
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Details    []string `json:"details,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

type jsonReport struct {
	Checks  []jsonCheck   `json:"checks"`
	Summary check.Summary `json:"summary"`
}

// WriteJSON writes results and their summary as one JSON document.
func WriteJSON(w io.Writer, results []check.Result) error {
	report := jsonReport{
		Checks:  make([]jsonCheck, 0, len(results)),
		Summary: check.Summarize(results),
	}
	for _, r := range results {
		c := jsonCheck{
			Name:       r.Name,
			Status:     string(r.Status),
			Details:    r.Details,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			c.Error = r.Err.Error()
		}
		report.Checks = append(report.Checks, c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// formatLabel dims the "label:" prefix of a detail line.
func formatLabel(s string) string {
	label, rest, ok := strings.Cut(s, ":")
	if !ok || dim == "" {
		return s
	}
	return dim + label + ":" + reset + rest
}

func containsDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}
