package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zing_pool/internal/controllers"
	"zing_pool/internal/middleware"
	"zing_pool/internal/notify"
	"zing_pool/internal/routes"
	"zing_pool/internal/services"
	"zing_pool/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.AutoMigrate {
		if err := store.Migrate(a.serviceDB); err != nil {
			return err
		}
	}

	hub := notify.NewPoolHub()
	if !a.cfg.HasSink("websocket") {
		logrus.Warn("websocket sink disabled, pool feed clients will receive no offers")
	}
	sink, err := a.sinks(hub)
	if err != nil {
		return err
	}
	sweeper := services.NewSweeper(a.system, a.cfg.ExpiryBatchSize)

	handler := routes.Handler(routes.Options{
		Controllers: &controllers.Controllers{
			Users:       a.users,
			System:      a.system,
			Fanout:      services.NewFanout(a.system, sink, a.cfg.FanoutLimit, a.cfg.SinkTimeout),
			Sweeper:     sweeper,
			Pool:        hub,
			Resolver:    middleware.NewJWTResolver(a.cfg.JWTSecret),
			AuthTimeout: a.cfg.AuthTimeout,
		},
		Roles:         a.users,
		TriggerSecret: a.cfg.TriggerSecret,
		AccessLog:     a.accessLog,
	})

	if a.cfg.SweepInterval > 0 {
		go sweeper.Run(ctx, a.cfg.SweepInterval)
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", a.cfg.HTTPAddr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
