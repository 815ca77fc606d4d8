package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandtree/siphon/api"
	"github.com/sandtree/siphon/browser"
	"github.com/sandtree/siphon/config"
	"github.com/sandtree/siphon/limiter"
	"github.com/sandtree/siphon/metrics"
	"github.com/sandtree/siphon/orchestrate"
	"github.com/sandtree/siphon/resultcache"
	"github.com/sandtree/siphon/searx"
)

var buildVersion = "0.1.0"

var portOverride int

func main() {
	rootCmd := &cobra.Command{
		Use:     "siphon",
		Short:   "HTML-to-Markdown scraping service with SSRF-guarded fetch and browser fallback",
		Version: buildVersion,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the siphon HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&portOverride, "port", 0, "override the configured HTTP port")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the siphon version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(buildVersion)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	rootCmd.RunE = runServe

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	initLogger(cfg.Log)
	slog.Info("siphon starting",
		"port", cfg.Server.Port,
		"maxConcurrency", cfg.Server.MaxConcurrency,
		"headless", cfg.Browser.Headless,
	)

	pool := browser.New(browser.Config{
		Headless:     cfg.Browser.Headless,
		NoSandbox:    cfg.Browser.NoSandbox,
		BrowserBin:   cfg.Browser.BrowserBin,
		DefaultProxy: cfg.Browser.DefaultProxy,
		ProxyList:    cfg.Server.ProxyList,
		MaxRequests:  cfg.Browser.MaxRequests,
	})
	defer pool.Close()

	cache := resultcache.New(cfg.Cache.MaxItems, cfg.Cache.TTL)
	lim := limiter.New(cfg.Server.MaxConcurrency)
	m := metrics.New(cfg.Metrics.Enabled)

	orch := orchestrate.New(cache, lim, pool, m, orchestrate.Config{
		MaxTimeout: cfg.Scraper.MaxTimeout,
	})

	searchClient := searx.New(cfg.Searx.URL, cfg.Searx.Timeout)

	startTime := time.Now()
	router := api.NewRouter(orch, searchClient, pool, cache, cfg, startTime)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("siphon stopped")
	return nil
}

func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
