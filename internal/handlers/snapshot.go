package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chromedp/chromedp"
	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/web"
	"gopkg.in/yaml.v3"
)

// HandleSnapshot returns the accessibility tree of a tab.
//
// Query params: tabId, filter ("interactive" or "all"), depth (max
// nesting depth, -1 for full tree), selector (scope to a CSS selector),
// format ("json", "yaml", "text").
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureChrome(); err != nil {
		web.Error(w, 500, fmt.Errorf("chrome initialization: %w", err))
		return
	}

	tabID := r.URL.Query().Get("tabId")
	filter := r.URL.Query().Get("filter")
	format := r.URL.Query().Get("format")
	selector := r.URL.Query().Get("selector")
	maxDepth := -1
	if d := r.URL.Query().Get("depth"); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			maxDepth = n
		}
	}

	ctx, resolvedTabID, err := h.Bridge.TabContext(tabID)
	if err != nil {
		web.Error(w, 404, err)
		return
	}

	tCtx, tCancel := context.WithTimeout(ctx, h.Config.ActionTimeout)
	defer tCancel()
	go web.CancelOnClientDone(r.Context(), tCancel)

	nodes, err := bridge.FetchAXTree(tCtx)
	if err != nil {
		web.Error(w, 500, err)
		return
	}

	if selector != "" {
		ref, err := bridge.QueryNode(tCtx, selector)
		if err != nil {
			web.Error(w, 400, fmt.Errorf("selector: %w", err))
			return
		}
		nodes = bridge.FilterSubtree(nodes, ref.BackendID)
	}

	flat, refs := bridge.BuildSnapshot(nodes, filter, maxDepth)
	h.Bridge.SetRefCache(resolvedTabID, &bridge.RefCache{Refs: refs, Nodes: flat})

	var url, title string
	_ = chromedp.Run(tCtx,
		chromedp.Location(&url),
		chromedp.Title(&title),
	)

	switch format {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(200)
		_, _ = fmt.Fprintf(w, "# %s\n# %s\n# %d nodes\n\n", title, url, len(flat))
		_, _ = w.Write([]byte(bridge.FormatSnapshotText(flat)))
	case "yaml":
		data := map[string]any{
			"url":   url,
			"title": title,
			"nodes": flat,
			"count": len(flat),
		}
		yamlContent, err := yaml.Marshal(data)
		if err != nil {
			web.Error(w, 500, fmt.Errorf("marshal yaml: %w", err))
			return
		}
		w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write(yamlContent)
	default:
		web.JSON(w, 200, map[string]any{
			"url":   url,
			"title": title,
			"nodes": flat,
			"count": len(flat),
		})
	}
}
