package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/web"
)

// HandleScreenshot captures a screenshot of a tab. Defaults to JPEG;
// format=png produces the lossless artifact format suite runs use.
func (h *Handlers) HandleScreenshot(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureChrome(); err != nil {
		web.Error(w, 500, fmt.Errorf("chrome initialization: %w", err))
		return
	}

	tabID := r.URL.Query().Get("tabId")
	output := r.URL.Query().Get("output")
	format := r.URL.Query().Get("format")
	if format != "png" {
		format = "jpeg"
	}

	ctx, _, err := h.Bridge.TabContext(tabID)
	if err != nil {
		web.Error(w, 404, err)
		return
	}

	tCtx, tCancel := context.WithTimeout(ctx, h.Config.ActionTimeout)
	defer tCancel()
	go web.CancelOnClientDone(r.Context(), tCancel)

	quality := 80
	if q := r.URL.Query().Get("quality"); q != "" {
		if qn, err := strconv.Atoi(q); err == nil {
			quality = qn
		}
	}

	buf, err := bridge.CaptureScreenshot(tCtx, format, quality)
	if err != nil {
		web.Error(w, 500, err)
		return
	}

	if output == "file" {
		screenshotDir := filepath.Join(h.Config.StateDir, "screenshots")
		if err := os.MkdirAll(screenshotDir, 0750); err != nil {
			web.Error(w, 500, fmt.Errorf("create screenshot dir: %w", err))
			return
		}

		ext := "jpg"
		if format == "png" {
			ext = "png"
		}
		timestamp := time.Now().Format("20060102-150405")
		filename := fmt.Sprintf("screenshot-%s.%s", timestamp, ext)
		filePath := filepath.Join(screenshotDir, filename)

		if err := os.WriteFile(filePath, buf, 0600); err != nil {
			web.Error(w, 500, fmt.Errorf("write screenshot: %w", err))
			return
		}

		web.JSON(w, 200, map[string]any{
			"path":      filePath,
			"size":      len(buf),
			"format":    format,
			"timestamp": timestamp,
		})
		return
	}

	if r.URL.Query().Get("raw") == "true" {
		w.Header().Set("Content-Type", "image/"+format)
		if _, err := w.Write(buf); err != nil {
			slog.Error("screenshot write", "err", err)
		}
		return
	}

	web.JSON(w, 200, map[string]any{
		"format": format,
		"base64": base64.StdEncoding.EncodeToString(buf),
	})
}
