// apiserver runs the HTTP API with configuration from the environment and
// an optional config file; it is the containerized entrypoint, equivalent to
// "marketgap serve".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketgap-io/marketgap/internal/config"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	"github.com/marketgap-io/marketgap/internal/interfaces/cli"
)

func main() {
	cfg, err := config.Load(os.Getenv("MARKETGAP_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	log, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunServer(ctx, cfg, log); err != nil {
		log.Error("server exited", logging.Err(err))
		os.Exit(1)
	}
}
