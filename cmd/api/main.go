package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/botwa2000/bonifatus-dms-sub000/internal/adapters/http"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/bootstrap"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/config"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/observability/logging"
)

const service = "docintel-api"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Service: service, WithQueue: true}, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.RouterOptions{
		Analyzer:  app.AnalyzeUC,
		Submitter: app.Submitter,
		Metrics:   app.Metrics.Handler(),
		Healthy:   app.Healthy,
		Logger:    logger,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      http.TimeoutHandler(router, cfg.PipelineTimeout, `{"error":"analysis timed out"}`),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.PipelineTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown error", "error", err)
	}
}
