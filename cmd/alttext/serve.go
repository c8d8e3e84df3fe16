package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"alttext/internal/config"
	"alttext/internal/logging"
	"alttext/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation pipeline as an HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if debug {
				logging.SetLevel(logging.LevelDebug)
			}
			logger := logging.NewComponentLogger("server")
			runner, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			serverCfg := server.DefaultConfig()
			serverCfg.Addr = addr
			serverCfg.Debug = debug
			srv := server.New(runner, serverCfg, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default searches ./alttext.yaml and ~/.alttext/)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug-level logging and verbose request output")
	return cmd
}
