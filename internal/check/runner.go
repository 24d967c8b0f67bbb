package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/idutil"
)

// Runner evaluates suites against a browser session. Checks run in order
// and the run stops at the first failure; the screenshot artifact is
// captured only after every check has passed.
type Runner struct {
	Session Session

	// StepTimeout bounds each navigation or check step. Suite.TimeoutSec
	// overrides it per run when set.
	StepTimeout time.Duration

	// BaseDir anchors relative page paths and screenshot outputs.
	// Empty means the working directory.
	BaseDir string
}

func NewRunner(s Session, stepTimeout time.Duration) *Runner {
	return &Runner{Session: s, StepTimeout: stepTimeout}
}

func (r *Runner) stepTimeout(s *Suite) time.Duration {
	if s.TimeoutSec > 0 {
		return time.Duration(s.TimeoutSec) * time.Second
	}
	if r.StepTimeout > 0 {
		return r.StepTimeout
	}
	return 15 * time.Second
}

// Run navigates to the suite's page and evaluates every check.
func (r *Runner) Run(ctx context.Context, s *Suite) *RunResult {
	res := &RunResult{
		RunID:   idutil.RunID(s.Name),
		Suite:   s.Name,
		Started: time.Now(),
	}
	defer func() {
		res.DurationMs = time.Since(res.Started).Milliseconds()
	}()

	timeout := r.stepTimeout(s)

	url, err := PageURL(s.Page, r.BaseDir)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.URL = url

	navCtx, navCancel := context.WithTimeout(ctx, timeout)
	err = r.Session.Navigate(navCtx, url)
	navCancel()
	if err != nil {
		res.Error = fmt.Sprintf("navigate %s: %v", url, err)
		return res
	}
	slog.Info("page loaded", "suite", s.Name, "url", url)

	if s.WaitFor != "" {
		waitCtx, waitCancel := context.WithTimeout(ctx, timeout)
		_, err = r.Session.WaitSelector(waitCtx, s.WaitFor)
		waitCancel()
		if err != nil {
			res.Error = fmt.Sprintf("waitFor %s: %v", s.WaitFor, err)
			return res
		}
	}

	failed := false
	for i := range s.Checks {
		c := &s.Checks[i]
		cr := CheckResult{
			ID:   idutil.CheckID(s.Name, i),
			Desc: c.Describe(),
		}

		if failed {
			cr.Status = StatusSkip
			res.Checks = append(res.Checks, cr)
			continue
		}

		stepCtx, stepCancel := context.WithTimeout(ctx, timeout)
		r.evaluate(stepCtx, c, &cr)
		stepCancel()

		if cr.Status == StatusFail {
			failed = true
			slog.Warn("check failed", "suite", s.Name, "check", cr.Desc, "got", cr.Got, "err", cr.Error)
		}
		res.Checks = append(res.Checks, cr)
	}

	res.Passed = !failed

	if res.Passed && s.Screenshot != "" {
		path, err := r.captureScreenshot(ctx, s, timeout)
		if err != nil {
			res.Passed = false
			res.Error = err.Error()
			return res
		}
		res.Screenshot = path
	}

	return res
}

func (r *Runner) evaluate(ctx context.Context, c *Check, cr *CheckResult) {
	if c.Selector != "" {
		r.evaluateSelector(ctx, c, cr)
		return
	}
	r.evaluateRole(ctx, c, cr)
}

func (r *Runner) evaluateSelector(ctx context.Context, c *Check, cr *CheckResult) {
	ref, err := r.Session.QueryNode(ctx, c.Selector)
	if err != nil {
		cr.Status = StatusFail
		if errors.Is(err, bridge.ErrNoElement) {
			cr.Error = "element not found"
		} else {
			cr.Error = err.Error()
		}
		return
	}

	if c.Attribute == "" {
		r.compareText(ctx, c, cr, ref.BackendID)
		return
	}

	attrs, err := r.Session.NodeAttributes(ctx, ref.NodeID)
	if err != nil {
		cr.Status = StatusFail
		cr.Error = err.Error()
		return
	}

	val, ok := attrs[c.Attribute]
	r.compare(c, cr, val, ok)
}

func (r *Runner) evaluateRole(ctx context.Context, c *Check, cr *CheckResult) {
	nodes, err := r.Session.AXNodes(ctx)
	if err != nil {
		cr.Status = StatusFail
		cr.Error = err.Error()
		return
	}

	node := bridge.FindByRoleName(nodes, c.Role, c.Name)
	if node == nil {
		cr.Status = StatusFail
		cr.Error = fmt.Sprintf("no %s named %q", c.Role, c.Name)
		return
	}

	if c.Attribute == "" {
		r.compareText(ctx, c, cr, node.NodeID)
		return
	}

	val, present, err := r.Session.AttributeByBackendID(ctx, node.NodeID, c.Attribute)
	if err != nil {
		cr.Status = StatusFail
		cr.Error = err.Error()
		return
	}

	r.compare(c, cr, val, present)
}

// compareText handles checks without an attribute: no expectation means
// existence passed already, otherwise the element's trimmed text is the
// compared value.
func (r *Runner) compareText(ctx context.Context, c *Check, cr *CheckResult, backendID int64) {
	if c.Equals == nil && c.Contains == "" {
		cr.Status = StatusPass
		return
	}

	text, err := r.Session.TextByBackendID(ctx, backendID)
	if err != nil {
		cr.Status = StatusFail
		cr.Error = err.Error()
		return
	}
	r.compare(c, cr, strings.TrimSpace(text), true)
}

func (r *Runner) compare(c *Check, cr *CheckResult, val string, present bool) {
	if !present {
		cr.Status = StatusFail
		cr.Error = fmt.Sprintf("attribute %q missing", c.Attribute)
		return
	}

	cr.Got = val
	switch {
	case c.Equals != nil:
		cr.Want = *c.Equals
		if val == *c.Equals {
			cr.Status = StatusPass
		} else {
			cr.Status = StatusFail
		}
	case c.Contains != "":
		cr.Want = c.Contains
		if strings.Contains(val, c.Contains) {
			cr.Status = StatusPass
		} else {
			cr.Status = StatusFail
		}
	default:
		// Attribute presence is the assertion.
		cr.Status = StatusPass
	}
}

func (r *Runner) captureScreenshot(ctx context.Context, s *Suite, timeout time.Duration) (string, error) {
	ssCtx, ssCancel := context.WithTimeout(ctx, timeout)
	defer ssCancel()

	buf, err := r.Session.Screenshot(ssCtx, "png", 0)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	path := s.Screenshot
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.BaseDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}
