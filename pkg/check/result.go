package check

import "time"

// Status represents the outcome of a check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusFail Status = "FAIL"
)

// Result holds the outcome of a single check.
type Result struct {
	Name     string        // e.g., "COUNT", "CREATE"
	Status   Status        // OK or FAIL
	Details  []string      // human-readable details
	Err      error         // underlying error for failures
	Duration time.Duration // time spent waiting for the action
}

// OK returns true if the check passed.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Summary holds aggregate counts for a completed run.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts passed and failed results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// OK returns true if every check in the run passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
