package check

import (
	"fmt"
	"io"
	"time"
)

const (
	PassMark = "✅"
	FailMark = "❌"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

type CheckResult struct {
	ID     string `json:"id"`
	Desc   string `json:"desc"`
	Status Status `json:"status"`
	Got    string `json:"got,omitempty"`
	Want   string `json:"want,omitempty"`
	Error  string `json:"error,omitempty"`
}

type RunResult struct {
	RunID      string        `json:"runId"`
	Suite      string        `json:"suite"`
	URL        string        `json:"url"`
	Started    time.Time     `json:"started"`
	DurationMs int64         `json:"durationMs"`
	Checks     []CheckResult `json:"checks"`
	Screenshot string        `json:"screenshot,omitempty"`
	Passed     bool          `json:"passed"`
	Error      string        `json:"error,omitempty"`
}

// ExitCode maps the run outcome to the process contract: 0 on success,
// 1 on any check failure or setup error.
func (r *RunResult) ExitCode() int {
	if r.Passed {
		return 0
	}
	return 1
}

// Render writes one marker line per evaluated check, in run order.
func (r *RunResult) Render(w io.Writer) {
	if r.Error != "" {
		fmt.Fprintf(w, "%s %s failed: %s\n", FailMark, r.Suite, r.Error)
		return
	}
	for _, c := range r.Checks {
		switch c.Status {
		case StatusPass:
			fmt.Fprintf(w, "%s Verified %s\n", PassMark, c.Desc)
		case StatusFail:
			if c.Error != "" {
				fmt.Fprintf(w, "%s %s: %s\n", FailMark, c.Desc, c.Error)
			} else {
				fmt.Fprintf(w, "%s %s: got %q, want %q\n", FailMark, c.Desc, c.Got, c.Want)
			}
		case StatusSkip:
			fmt.Fprintf(w, "-- skipped %s\n", c.Desc)
		}
	}
	if r.Screenshot != "" {
		fmt.Fprintf(w, "%s Screenshot captured: %s\n", PassMark, r.Screenshot)
	}
}
