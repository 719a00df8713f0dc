package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/leo-linksim/internal/archive"
	"github.com/signalsfoundry/leo-linksim/internal/logging"
	"github.com/signalsfoundry/leo-linksim/internal/observability"
	"github.com/signalsfoundry/leo-linksim/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "TCP address the HTTP API listens on")
	archivePath := flag.String("archive", "linksim.db", "SQLite archive path; empty disables archiving")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	simCollector, err := observability.NewSimulationCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise simulation metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}
	apiCollector, err := observability.NewAPICollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise API metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	var store *archive.Store
	if *archivePath != "" {
		store, err = archive.Open(*archivePath)
		if err != nil {
			log.Error(ctx, "failed to open run archive",
				logging.String("path", *archivePath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()
		log.Info(ctx, "run archive opened", logging.String("path", *archivePath))
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.NewServer(store, log, simCollector, apiCollector).Router(),
	}

	go func() {
		log.Info(ctx, "starting linksim HTTP server", logging.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down linksim server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "forced shutdown", logging.String("error", err.Error()))
	}
}
