package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/web"
)

const maxBodySize = 1 << 20

func (h *Handlers) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureChrome(); err != nil {
		web.Error(w, 500, fmt.Errorf("chrome initialization: %w", err))
		return
	}

	var req struct {
		TabID     string  `json:"tabId"`
		URL       string  `json:"url"`
		NewTab    bool    `json:"newTab"`
		WaitTitle float64 `json:"waitTitle"`
		Timeout   float64 `json:"timeout"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		web.Error(w, 400, fmt.Errorf("decode: %w", err))
		return
	}
	if req.URL == "" {
		web.Error(w, 400, fmt.Errorf("url required"))
		return
	}

	titleWait := time.Duration(0)
	if req.WaitTitle > 0 {
		if req.WaitTitle > 30 {
			req.WaitTitle = 30
		}
		titleWait = time.Duration(req.WaitTitle * float64(time.Second))
	}

	navTimeout := h.Config.NavigateTimeout
	if req.Timeout > 0 {
		if req.Timeout > 120 {
			req.Timeout = 120
		}
		navTimeout = time.Duration(req.Timeout * float64(time.Second))
	}

	if req.NewTab {
		newTargetID, newCtx, _, err := h.Bridge.CreateTab(req.URL)
		if err != nil {
			web.Error(w, 500, fmt.Errorf("new tab: %w", err))
			return
		}

		tCtx, tCancel := context.WithTimeout(newCtx, navTimeout)
		defer tCancel()
		go web.CancelOnClientDone(r.Context(), tCancel)

		var url string
		_ = chromedp.Run(tCtx, chromedp.Location(&url))
		title, _ := bridge.WaitForTitle(tCtx, titleWait)

		web.JSON(w, 200, map[string]any{"tabId": newTargetID, "url": url, "title": title})
		return
	}

	ctx, resolvedTabID, err := h.Bridge.TabContext(req.TabID)
	if err != nil {
		web.Error(w, 404, err)
		return
	}

	tCtx, tCancel := context.WithTimeout(ctx, navTimeout)
	defer tCancel()
	go web.CancelOnClientDone(r.Context(), tCancel)

	if err := bridge.NavigatePage(tCtx, req.URL); err != nil {
		web.Error(w, 500, fmt.Errorf("navigate: %w", err))
		return
	}

	h.Bridge.DeleteRefCache(resolvedTabID)

	var url string
	_ = chromedp.Run(tCtx, chromedp.Location(&url))
	title, _ := bridge.WaitForTitle(tCtx, titleWait)

	web.JSON(w, 200, map[string]any{"url": url, "title": title})
}
