package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagecheck/pagecheck/internal/config"
)

type TabEntry struct {
	Ctx    context.Context
	Cancel context.CancelFunc
}

type RefCache struct {
	Refs  map[string]int64
	Nodes []A11yNode
}

type Bridge struct {
	AllocCtx      context.Context
	AllocCancel   context.CancelFunc
	BrowserCtx    context.Context
	BrowserCancel context.CancelFunc
	Config        *config.RuntimeConfig
	*TabManager

	// Lazy initialization
	initMu      sync.Mutex
	initialized bool
}

func New(allocCtx, browserCtx context.Context, cfg *config.RuntimeConfig) *Bridge {
	b := &Bridge{
		AllocCtx:   allocCtx,
		BrowserCtx: browserCtx,
		Config:     cfg,
	}
	// Only initialize TabManager if browserCtx is provided (not lazy-init case)
	if cfg != nil && browserCtx != nil {
		b.TabManager = NewTabManager(browserCtx, cfg)
	}
	return b
}

// EnsureChrome launches Chrome on first use for requests that need a browser.
func (b *Bridge) EnsureChrome(cfg *config.RuntimeConfig) error {
	b.initMu.Lock()
	defer b.initMu.Unlock()

	if b.initialized && b.BrowserCtx != nil {
		return nil
	}

	if b.BrowserCtx != nil {
		return nil
	}

	allocCtx, allocCancel, browserCtx, browserCancel, err := InitChrome(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize chrome: %w", err)
	}

	b.AllocCtx = allocCtx
	b.AllocCancel = allocCancel
	b.BrowserCtx = browserCtx
	b.BrowserCancel = browserCancel
	b.initialized = true

	if b.Config != nil && b.TabManager == nil {
		b.TabManager = NewTabManager(browserCtx, b.Config)
	}

	return nil
}

func (b *Bridge) SetBrowserContexts(allocCtx context.Context, allocCancel context.CancelFunc, browserCtx context.Context, browserCancel context.CancelFunc) {
	b.initMu.Lock()
	defer b.initMu.Unlock()

	b.AllocCtx = allocCtx
	b.AllocCancel = allocCancel
	b.BrowserCtx = browserCtx
	b.BrowserCancel = browserCancel
	b.initialized = true

	if b.Config != nil && b.TabManager == nil {
		b.TabManager = NewTabManager(browserCtx, b.Config)
	}
}

func (b *Bridge) BrowserContext() context.Context {
	return b.BrowserCtx
}
