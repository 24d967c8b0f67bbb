// Package handlers provides HTTP request handlers for the verification server.
package handlers

import (
	"net/http"

	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/config"
)

type Handlers struct {
	Bridge bridge.BridgeAPI
	Config *config.RuntimeConfig
}

func New(b bridge.BridgeAPI, cfg *config.RuntimeConfig) *Handlers {
	return &Handlers{
		Bridge: b,
		Config: cfg,
	}
}

// ensureChrome ensures Chrome is initialized before handling requests that need it
func (h *Handlers) ensureChrome() error {
	return h.Bridge.EnsureChrome(h.Config)
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux, doShutdown func()) {
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /metrics", h.HandleMetrics)
	mux.HandleFunc("GET /tabs", h.HandleTabs)
	mux.HandleFunc("POST /tab", h.HandleTab)
	mux.HandleFunc("POST /navigate", h.HandleNavigate)
	mux.HandleFunc("GET /snapshot", h.HandleSnapshot)
	mux.HandleFunc("GET /screenshot", h.HandleScreenshot)
	mux.HandleFunc("POST /run", h.HandleRun)
	mux.HandleFunc("GET /screencast", h.HandleScreencast)

	if doShutdown != nil {
		mux.HandleFunc("POST /shutdown", h.HandleShutdown(doShutdown))
	}
}

func (h *Handlers) HandleShutdown(doShutdown func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{"status":"shutting down"}`))
		go doShutdown()
	}
}
