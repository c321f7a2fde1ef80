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

	"github.com/code-nisarg/SunKalp/notifier/internal/config"
	"github.com/code-nisarg/SunKalp/notifier/internal/digest"
	"github.com/code-nisarg/SunKalp/notifier/internal/notify"
	"github.com/code-nisarg/SunKalp/pkg/alert"
	"github.com/code-nisarg/SunKalp/pkg/feed"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("sunkalp-notifier starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	n := cfg.Notifier

	slog.Info("config loaded",
		"feed", n.Feed.Type,
		"rules", len(n.Rules),
		"poll_interval", n.PollInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := feed.New(n.Feed)
	if err != nil {
		slog.Error("failed to build feed client", "err", err)
		os.Exit(1)
	}

	evaluator := alert.NewEvaluator(n.Rules)
	// The notifier never resets alert state: cooldowns span the whole
	// process lifetime, feed outages included.
	state := alert.NewState()

	dispatcher := notify.NewDispatcher(n)
	slog.Info("delivery channels ready", "channels", dispatcher.Channels())

	reporter := digest.NewReporter(dispatcher)
	if n.Digest.Enabled {
		if err := reporter.Start(n.Digest.Schedule); err != nil {
			slog.Error("failed to schedule digest", "err", err)
			os.Exit(1)
		}
		defer reporter.Stop()
	}

	// Watch config file for changes. Rules are fixed for the process
	// lifetime; the watcher tells operators a restart is needed.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config changed on disk — restart to apply",
				"rules", len(updated.Notifier.Rules))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Health endpoint for process supervisors.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", n.HealthPort),
		Handler: healthMux,
	}
	go func() {
		slog.Info("health endpoint listening", "port", n.HealthPort)
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("health server stopped", "err", err)
		}
	}()

	// Poll loop: fetch latest sample → evaluate rules → dispatch alerts.
	// A fetch failure is logged and the cycle skipped; alert state is
	// untouched so cooldowns keep their meaning across outages.
	go func() {
		ticker := time.NewTicker(n.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sample, err := client.Fetch(ctx)
				if err != nil {
					slog.Warn("fetch failed — skipping cycle", "err", err)
					continue
				}
				reporter.Record(sample)

				fired := evaluator.Evaluate(sample, now, state)
				if len(fired) == 0 {
					continue
				}
				for _, f := range fired {
					slog.Warn("alert fired",
						"metric", f.Metric,
						"value", f.Value,
						"limit", f.Limit,
						"direction", f.Direction,
					)
				}
				reporter.RecordAlerts(len(fired))
				dispatcher.DispatchAlerts(ctx, fired)
			}
		}
	}()

	<-ctx.Done()
	slog.Info("sunkalp-notifier shutting down")
	healthSrv.Shutdown(context.Background()) //nolint:errcheck
}
