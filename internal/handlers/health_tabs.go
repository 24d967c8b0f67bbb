package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chromedp/chromedp"
	"github.com/pagecheck/pagecheck/internal/web"
)

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	targets, err := h.Bridge.ListTargets()
	if err != nil {
		web.JSON(w, 200, map[string]any{"status": "disconnected", "error": err.Error(), "cdp": h.Config.CdpURL})
		return
	}
	web.JSON(w, 200, map[string]any{"status": "ok", "tabs": len(targets), "cdp": h.Config.CdpURL})
}

func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, 200, snapshotMetrics())
}

func (h *Handlers) HandleTabs(w http.ResponseWriter, r *http.Request) {
	targets, err := h.Bridge.ListTargets()
	if err != nil {
		web.Error(w, 500, err)
		return
	}

	tabs := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		tabs = append(tabs, map[string]any{
			"id":    string(t.TargetID),
			"url":   t.URL,
			"title": t.Title,
			"type":  t.Type,
		})
	}
	web.JSON(w, 200, map[string]any{"tabs": tabs})
}

const (
	tabActionNew   = "new"
	tabActionClose = "close"
)

func (h *Handlers) HandleTab(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureChrome(); err != nil {
		web.Error(w, 500, fmt.Errorf("chrome initialization: %w", err))
		return
	}

	var req struct {
		Action string `json:"action"`
		TabID  string `json:"tabId"`
		URL    string `json:"url"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		web.Error(w, 400, fmt.Errorf("decode: %w", err))
		return
	}

	switch req.Action {
	case tabActionNew:
		newTargetID, ctx, _, err := h.Bridge.CreateTab(req.URL)
		if err != nil {
			web.Error(w, 500, err)
			return
		}

		var curURL, title string
		_ = chromedp.Run(ctx, chromedp.Location(&curURL), chromedp.Title(&title))
		web.JSON(w, 200, map[string]any{"tabId": newTargetID, "url": curURL, "title": title})

	case tabActionClose:
		if req.TabID == "" {
			web.Error(w, 400, fmt.Errorf("tabId required"))
			return
		}

		if err := h.Bridge.CloseTab(req.TabID); err != nil {
			web.Error(w, 500, err)
			return
		}
		web.JSON(w, 200, map[string]any{"closed": true})

	default:
		web.Error(w, 400, fmt.Errorf("action must be 'new' or 'close'"))
	}
}
