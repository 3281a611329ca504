package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	delivery_grpc "tweetbot-service/internal/infrastructure/inbound/grpc"
	delivery_http "tweetbot-service/internal/infrastructure/inbound/http"
	"tweetbot-service/internal/infrastructure/inbound/scheduler"
	"tweetbot-service/internal/infrastructure/outbound/repository/migrator"
)

func newServeCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, admin HTTP API and gRPC health server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before starting")
	return cmd
}

func serve(ctx context.Context, a *app, migrate bool) error {
	cfg, log, metrics := a.cfg, a.log, a.metrics

	if migrate {
		if err := migrator.Run(cfg.Database, migrator.Up, log); err != nil {
			return err
		}
	}

	st, err := openStorage(ctx, cfg.Database, log, metrics)
	if err != nil {
		return err
	}
	defer st.close()

	pipeline, closePipeline, err := newPipeline(cfg, st, log, metrics)
	if err != nil {
		return err
	}
	defer closePipeline()

	postService := newPostService(st, log, metrics)

	httpServer, err := delivery_http.NewServer(
		cfg.HTTPServer.Address,
		cfg.HTTPServer.Port,
		postService,
		pipeline,
		log,
		prometheus.DefaultRegisterer,
		prometheus.DefaultGatherer,
	)
	if err != nil {
		return err
	}
	grpcServer := delivery_grpc.NewServer(cfg.GRPCServer.Address, cfg.GRPCServer.Port, log, metrics)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(pipeline, cfg.Scheduler.Interval, log)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	metrics.SetServiceHealth(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	done := make(chan bool, 1)
	httpDone := make(chan bool, 1)

	go func() {
		if err := grpcServer.Run(); err != nil {
			log.Error("gRPC server error", slog.String("error", err.Error()))
		}
		done <- true
	}()

	go func() {
		if err := httpServer.Run(); err != nil {
			log.Error("HTTP server error", slog.String("error", err.Error()))
		}
		httpDone <- true
	}()

	<-quit
	log.Info("Shutting down servers...")

	metrics.SetServiceHealth(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler shutdown error", slog.String("error", err.Error()))
		}
	}

	if err := grpcServer.Shutdown(); err != nil {
		log.Error("gRPC server shutdown error", slog.String("error", err.Error()))
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}

	<-done
	<-httpDone

	log.Info("Server exited")
	return nil
}
