// Package main implements the neowatch simulation service: the background
// stepping loop, the NeoWs adapter, and the HTTP/WebSocket command surface
// for the UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neowatch/neowatch/internal/api"
	"github.com/neowatch/neowatch/internal/api/realtime"
	"github.com/neowatch/neowatch/internal/config"
	"github.com/neowatch/neowatch/internal/neows"
	"github.com/neowatch/neowatch/internal/observability"
	"github.com/neowatch/neowatch/internal/physics"
	"github.com/neowatch/neowatch/internal/simulation"
	"github.com/neowatch/neowatch/internal/utils"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		apiKey     string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "neowatch",
		Short: "Near-Earth-object tracking and deflection simulator",
		Long: `neowatch propagates a heliocentric N-body system with a symplectic
integrator and serves closest-approach, Monte-Carlo impact, and deflection
analysis over HTTP and WebSocket.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.API.Addr = addr
			}
			if apiKey != "" {
				cfg.NeoWs.APIKey = apiKey
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "NASA API key (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")

	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	log := utils.NewLogger(cfg.Log.Level, cfg.Log.Output)
	metrics := observability.GetMetrics()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Simulation world and stepping worker.
	state := simulation.NewState(physics.J2000Epoch)
	state.SetTimeStep(cfg.Sim.TimeStep)
	state.SetTimeScale(cfg.Sim.TimeScale)

	runner := simulation.NewRunner(state, log, metrics)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer runner.Stop()

	// NeoWs adapter and cache.
	client := neows.NewClient(neows.Config{
		APIKey:  cfg.NeoWs.APIKey,
		BaseURL: cfg.NeoWs.BaseURL,
		Timeout: cfg.NeoWs.Timeout,
	}, log, metrics)
	cache := neows.NewCache(cfg.NeoWs.CacheTTL)

	// Realtime frame streaming.
	broadcaster := realtime.NewBroadcaster(log, metrics)
	go broadcaster.Start()
	defer broadcaster.Stop()
	go broadcaster.StreamFrames(ctx, cfg.Sim.StreamInterval, func() interface{} {
		return runner.Snapshot()
	})

	handler := api.NewHandler(runner, client, cache, log, metrics)
	server := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: api.NewRouter(handler, broadcaster, cfg.API.AllowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("neowatch listening on %s", cfg.API.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
