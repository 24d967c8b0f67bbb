package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/pagecheck/pagecheck/internal/check"
	"github.com/pagecheck/pagecheck/internal/web"
)

// HandleRun executes a verification suite against a tab and returns the
// full run result. The HTTP status is 200 whether or not the checks
// passed; callers read the "passed" field.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureChrome(); err != nil {
		web.Error(w, 500, fmt.Errorf("chrome initialization: %w", err))
		return
	}

	var req struct {
		check.Suite
		TabID string `json:"tabId"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		web.Error(w, 400, fmt.Errorf("decode: %w", err))
		return
	}
	if req.Suite.Name == "" {
		req.Suite.Name = "adhoc"
	}
	if err := req.Suite.Validate(); err != nil {
		web.Error(w, 400, err)
		return
	}

	artifactDir := filepath.Join(h.Config.StateDir, "artifacts")
	if req.Suite.Screenshot != "" {
		safe, err := web.SafePath(artifactDir, req.Suite.Screenshot)
		if err != nil {
			web.Error(w, 400, fmt.Errorf("screenshot path: %w", err))
			return
		}
		req.Suite.Screenshot = safe
	}

	ctx, resolvedTabID, err := h.Bridge.TabContext(req.TabID)
	if err != nil {
		web.Error(w, 404, err)
		return
	}

	runner := check.NewRunner(check.TabSession{}, h.Config.ActionTimeout)
	runner.BaseDir = artifactDir

	res := runner.Run(ctx, &req.Suite)
	recordRun(res.Passed)

	// The run navigated the tab; any cached snapshot refs are stale.
	h.Bridge.DeleteRefCache(resolvedTabID)

	web.JSON(w, 200, res)
}
