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
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/observability/logging"
)

const service = "docintel-worker"

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

	admin := &http.Server{
		Addr: ":" + cfg.WorkerMetricsPort,
		Handler: httpadapter.NewRouter(httpadapter.RouterOptions{
			Metrics: app.Metrics.Handler(),
			Healthy: app.Healthy,
			Logger:  logger,
		}).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker admin listening", "addr", admin.Addr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker admin server error", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSJobsSubject, "group", cfg.NATSQueueGroup)
	err = app.Queue.SubscribeJobs(ctx, func(jobCtx context.Context, job domain.DocumentJob) error {
		if !job.SubmittedAt.IsZero() {
			app.Metrics.ObserveQueueLag(service, time.Since(job.SubmittedAt))
		}
		app.Metrics.StartJob()
		started := time.Now()
		err := app.ProcessUC.Handle(jobCtx, job)
		app.Metrics.FinishJob(service, time.Since(started), err)
		return err
	})
	if err != nil {
		logger.Error("worker subscribe error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		logger.Warn("worker admin shutdown error", "error", err)
	}
}
