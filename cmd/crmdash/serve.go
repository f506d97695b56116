package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sarusarang/crm-extexhnology/apiclient"
	"github.com/sarusarang/crm-extexhnology/internal/config"
	"github.com/sarusarang/crm-extexhnology/server"
	"github.com/sarusarang/crm-extexhnology/session"
	"github.com/sarusarang/crm-extexhnology/session/filestore"
	"github.com/sarusarang/crm-extexhnology/session/notify"
	"github.com/sarusarang/crm-extexhnology/session/notify/natshub"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg config.Config) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	store, err := filestore.New(cfg.GetSessionDir())
	if err != nil {
		return err
	}

	watcher, err := store.Watch(filestore.WithWatchLogger(log.Logger))
	if err != nil {
		return err
	}
	defer watcher.Close()

	// In-process hub by default; NATS when several hosts share the store.
	var notifier notify.Notifier = notify.NewHub()
	if cfg.GetNATSURL() != "" {
		notifier, err = natshub.New(cfg.GetNATSURL(),
			natshub.WithSubject(cfg.GetNATSSubject()),
			natshub.WithLogger(log.Logger))
		if err != nil {
			return err
		}
	}
	defer notifier.Close()

	notices := server.NewNotices()

	sessions, err := session.NewManager(store,
		session.WithNotifier(notifier),
		session.WithSource(watcher),
		session.WithAlerter(notices),
		session.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	defer sessions.Close()

	api, err := apiclient.NewClient(cfg.GetAPIBaseURL(),
		apiclient.WithTokenSource(sessions),
		apiclient.WithClientLogger(log.Logger))
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, sessions, api, notices)
	if err != nil {
		return err
	}

	displayAppname(cfg.GetAppName())

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
