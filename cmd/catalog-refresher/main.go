package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"partsbot/internal/app"
	"partsbot/internal/config"
	"partsbot/internal/logging"
	"partsbot/internal/refresher"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cleanup = cancel

	a, err := app.New(ctx, cfg)
	must(err)
	defer a.Close()
	cleanup = func() {
		_ = a.Close()
		cancel()
	}

	exportDir := ""
	if cfg.RefreshExport {
		exportDir = cfg.OutputDir
	}
	svc := refresher.NewService(a.Catalog, a.Policy, cfg.RefreshInterval(), exportDir)
	must(svc.Run(ctx))
}

var (
	cleanup = func() {}
	exit    = os.Exit
)

func must(err error) {
	if err == nil {
		return
	}
	cleanup()
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	exit(1)
}
