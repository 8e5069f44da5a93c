// Command saiten runs the professor speech extraction service: voiceprint
// enrollment, speaker identification and target-speech extraction over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kikuchi-mizuki/saiten/config"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/server"
	"github.com/kikuchi-mizuki/saiten/speech"
	"github.com/kikuchi-mizuki/saiten/version"
	"github.com/kikuchi-mizuki/saiten/voiceprint/store"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: auto-discover)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "saiten: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Base.Name)
	log.Info("starting service", logger.Fields(
		"version", version.Get().Short(),
		"environment", cfg.Base.Environment,
		"port", cfg.Server.Port,
	))

	vps, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}

	svc := speech.NewService(cfg, vps, log)

	srv := server.New(cfg.Server, log)
	server.NewHandler(svc, vps, log).Register(srv.GinEngine())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	return srv.Stop(context.Background())
}
