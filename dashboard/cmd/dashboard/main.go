package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-nisarg/SunKalp/dashboard/internal/api"
	"github.com/code-nisarg/SunKalp/dashboard/internal/auth"
	"github.com/code-nisarg/SunKalp/dashboard/internal/config"
	"github.com/code-nisarg/SunKalp/dashboard/internal/history"
	"github.com/code-nisarg/SunKalp/dashboard/internal/ws"
	"github.com/code-nisarg/SunKalp/pkg/alert"
	"github.com/code-nisarg/SunKalp/pkg/feed"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve the dashboard SPA static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("sunkalp-dashboard starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	d := cfg.Dashboard

	slog.Info("config loaded",
		"http_port", d.HTTPPort,
		"feed", d.Feed.Type,
		"rules", len(d.Rules),
		"poll_interval", d.PollInterval,
		"history_window", d.HistoryWindow,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := feed.New(d.Feed)
	if err != nil {
		slog.Error("failed to build feed client", "err", err)
		os.Exit(1)
	}

	// Sample history with background window eviction.
	st := history.New(d.HistoryWindow)
	go st.Run(ctx)

	evaluator := alert.NewEvaluator(d.Rules)
	state := alert.NewState()
	alertLog := alert.NewLog(alert.DefaultLogCapacity)

	// WebSocket hub — streams samples and alerts to browser clients.
	hub := ws.New(st)
	go hub.Run(ctx)

	// Combined HTTP server: REST API (behind API key auth) + WebSocket hub.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", auth.APIKeyMiddleware(
		d.Auth.Mode,
		d.Auth.EffectiveHeader(),
		d.Auth.Key(),
		api.New(st, alertLog, d.Rules, d.PollInterval),
	))
	httpMux.Handle("/ws/stream", hub)

	// Optional: serve the pre-built SPA from a local directory.
	// Usage:  ./bin/sunkalp-dashboard -config config.yaml -ui-dir ui/dist
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			// SPA fallback: if the requested file doesn't exist, serve index.html.
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", d.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", d.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Poll loop: fetch latest sample → store → evaluate → broadcast.
	// When the feed recovers after a failed poll, alert state is cleared
	// (if configured), matching a fresh page load in the old dashboard.
	go func() {
		ticker := time.NewTicker(d.PollInterval)
		defer ticker.Stop()
		feedDown := false
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sample, err := client.Fetch(ctx)
				if err != nil {
					slog.Warn("fetch failed — skipping cycle", "err", err)
					feedDown = true
					continue
				}
				if feedDown {
					feedDown = false
					if d.ResetsOnReconnect() {
						state.Reset()
						slog.Info("feed reconnected — alert state reset")
					}
				}

				st.Append(sample)
				fired := evaluator.Evaluate(sample, now, state)
				if len(fired) > 0 {
					alertLog.Add(fired...)
					for _, f := range fired {
						slog.Warn("alert fired",
							"metric", f.Metric,
							"value", f.Value,
							"limit", f.Limit,
							"direction", f.Direction,
						)
					}
				}
				hub.BroadcastSample()
				hub.BroadcastAlerts(fired)
			}
		}
	}()

	<-ctx.Done()
	slog.Info("sunkalp-dashboard shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
