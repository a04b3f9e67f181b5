package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/api"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/archive"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/notify"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/syncer"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/term"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Synchronize the accounts and serve the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := debugLogger()

	sink, err := index.NewSink(config.Index, logger)
	if err != nil {
		return fmt.Errorf("cannot open index: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			term.Errorf("error closing the index: %s", err)
		}
	}()

	hub := notify.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	engineConfig := syncer.Config{
		Accounts: config.Accounts,
		Sink:     sink,
		Events:   hub,
		Sync:     config.Sync,
		Logger:   logger,
	}
	if config.Archive.Root != "" {
		mirror, err := archive.NewMaildir(config.Archive, logger)
		if err != nil {
			return fmt.Errorf("cannot open archive: %w", err)
		}
		term.Infof("archiving raw messages under %s", mirror.Root())
		engineConfig.Archive = mirror
	}

	engine := syncer.NewSyncer(engineConfig)
	term.Infof("synchronizing %d account(s)", len(config.Accounts))
	engine.StartSync()
	defer engine.StopSync()
	for account, state := range engine.States() {
		term.Infof("account %s: %s", account, state)
	}

	server := api.NewServer(api.Config{
		Listen:    config.Server.Listen,
		Sink:      sink,
		Engine:    engine,
		WebSocket: hub.ServeWS,
		Logger:    logger,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	term.Infof("listening on %s", config.Server.Listen)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case err := <-serverErr:
		return err
	case sig := <-interrupt:
		term.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		term.Errorf("error shutting down the server: %s", err)
	}
	return <-serverErr
}
