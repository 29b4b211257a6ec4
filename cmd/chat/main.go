package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chatbox-backend/internal/client/cli"
	"chatbox-backend/internal/client/config"
	"chatbox-backend/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error("failed to start client", "error", err)
		os.Exit(1)
	}

	// Ctrl-C skips the reply being revealed instead of killing the client.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGTERM {
				os.Exit(0)
			}
			app.Cancel()
		}
	}()

	app.Run(context.Background())
}
