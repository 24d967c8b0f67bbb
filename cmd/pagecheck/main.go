package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pagecheck/pagecheck/internal/bridge"
	"github.com/pagecheck/pagecheck/internal/config"
	"github.com/pagecheck/pagecheck/internal/handlers"
)

var version = "dev"

func main() {
	cfg := config.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("pagecheck %s\n", version)
			os.Exit(0)
		case "config":
			config.HandleConfigCommand(cfg)
			os.Exit(0)
		case "run":
			os.Exit(runSuiteCommand(cfg, os.Args[2:]))
		case "lint":
			os.Exit(lintCommand(os.Args[2:]))
		case "serve":
			runServer(cfg)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	printHelp()
}

func printHelp() {
	fmt.Printf(`pagecheck %s — page verification in headless Chrome

USAGE:
  pagecheck run <suite.yaml>    Run a verification suite, exit 0/1
  pagecheck lint <suite.yaml>   Static pre-flight against a local page
  pagecheck serve               Start the verification server
  pagecheck config init|show    Manage the config file
  pagecheck --version           Print version

ENVIRONMENT:
  PAGECHECK_PORT       Server port (default: 9876)
  PAGECHECK_HEADLESS   Run Chrome headless (default: true)
  PAGECHECK_TOKEN      Auth token for the server
  CDP_URL              Attach to a running Chrome instead of launching
  CHROME_BINARY        Chrome executable path

Examples:
  pagecheck run examples/suggestions.yaml
  pagecheck lint examples/suggestions.yaml
  PAGECHECK_HEADLESS=false pagecheck run examples/suggestions.yaml
`, version)
}

func runServer(cfg *config.RuntimeConfig) {
	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		slog.Error("cannot create state dir", "err", err)
		os.Exit(1)
	}

	allocCtx, allocCancel, browserCtx, browserCancel, err := bootChrome(cfg)
	if err != nil {
		slog.Error("Chrome failed to start after retry",
			"err", err,
			"hint", "try deleting your profile directory",
			"profile", cfg.ProfileDir,
		)
		os.Exit(1)
	}
	defer allocCancel()
	defer browserCancel()

	b := bridge.New(allocCtx, browserCtx, cfg)

	// For CDP_URL mode, the initial target might not exist yet.
	if cfg.CdpURL == "" {
		initTargetID := chromedp.FromContext(browserCtx).Target.TargetID
		b.RegisterTab(string(initTargetID), browserCtx)
		slog.Info("initial tab", "id", string(initTargetID))
	} else {
		slog.Info("CDP_URL mode: skipping initial tab registration")
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go b.CleanStaleTabs(cleanupCtx, time.Minute)

	mux := http.NewServeMux()
	h := handlers.New(b, cfg)

	shutdownOnce := &sync.Once{}
	doShutdown := func() {
		shutdownOnce.Do(func() {
			slog.Info("shutting down...")
			cleanupCancel()
			bridge.MarkCleanExit(cfg.ProfileDir)

			browserCancel()
			allocCancel()
			slog.Info("chrome closed")
		})
	}

	h.RegisterRoutes(mux, doShutdown)

	handler := handlers.RequestIDMiddleware(
		handlers.LoggingMiddleware(
			handlers.RateLimitMiddleware(
				handlers.CorsMiddleware(
					handlers.AuthMiddleware(cfg, mux)))))

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	setupSignalHandler(doShutdown, func() {
		cleanupCancel()
		browserCancel()
		allocCancel()
	})

	slog.Info("pagecheck server up", "port", cfg.Port, "cdp", cfg.CdpURL)
	if cfg.Token != "" {
		slog.Info("auth enabled")
	} else {
		slog.Info("auth disabled (set PAGECHECK_TOKEN to enable)")
	}

	go runStartupHealthCheck(cfg)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}

// bootChrome starts Chrome, retrying once with cleared session-restore
// data when the first launch fails on a dirty profile.
func bootChrome(cfg *config.RuntimeConfig) (context.Context, context.CancelFunc, context.Context, context.CancelFunc, error) {
	allocCtx, allocCancel := bridge.SetupAllocator(cfg)

	browserCtx, browserCancel, err := bridge.StartChrome(allocCtx)
	if err == nil {
		return allocCtx, allocCancel, browserCtx, browserCancel, nil
	}

	slog.Warn("Chrome startup failed, clearing sessions and retrying once", "err", err)
	allocCancel()
	bridge.ClearChromeSessions(cfg.ProfileDir)
	bridge.MarkCleanExit(cfg.ProfileDir)

	allocCtx, allocCancel = bridge.SetupAllocator(cfg)
	browserCtx, browserCancel, err = bridge.StartChrome(allocCtx)
	if err != nil {
		allocCancel()
		return nil, nil, nil, nil, err
	}
	slog.Info("Chrome started on retry")
	return allocCtx, allocCancel, browserCtx, browserCancel, nil
}

func setupSignalHandler(shutdownFn func(), forceFn func()) {
	go func() {
		sig := make(chan os.Signal, 2)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		go shutdownFn()
		<-sig
		slog.Warn("force shutdown requested")
		forceFn()
		os.Exit(130)
	}()
}

func runStartupHealthCheck(cfg *config.RuntimeConfig) {
	time.Sleep(500 * time.Millisecond)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", cfg.Port))
	if err != nil {
		slog.Error("startup health check failed", "err", err)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		slog.Info("startup health check passed")
	} else {
		slog.Warn("startup health check unexpected status", "status", resp.StatusCode)
	}
}
