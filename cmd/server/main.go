// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/signboard/internal/api"
	"github.com/tomtom215/signboard/internal/backend"
	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/links"
	"github.com/tomtom215/signboard/internal/liveness"
	"github.com/tomtom215/signboard/internal/logging"
	"github.com/tomtom215/signboard/internal/metrics"
	"github.com/tomtom215/signboard/internal/supervisor"
	"github.com/tomtom215/signboard/internal/supervisor/services"
	ws "github.com/tomtom215/signboard/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("link_api", cfg.Backends.Link).
		Str("device_api", cfg.Backends.Device).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Signboard")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startTime := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	backends := backend.NewServices(cfg, nil)
	store := links.NewStore(backends, cfg.Links)
	poller := liveness.NewPoller(backends, cfg.Liveness)
	wsHub := ws.NewHub()

	// A reload publishes the new snapshot to WebSocket clients and hands the
	// current device set to the poller. Each poll round is pushed as well.
	store.OnReload(wsHub.BroadcastLinksReloaded)
	store.OnDevicesChanged(poller.SetDevices)
	poller.OnUpdate(wsHub.BroadcastOnlineStatus)

	handler := api.NewHandler(cfg, backends, store, poller, wsHub)
	defer handler.Close()

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree.AddPollingService(services.NewRunService("websocket-hub", wsHub.RunWithContext))
	tree.AddPollingService(services.NewLifecycleService("links-store", store))
	tree.AddPollingService(services.NewLifecycleService("liveness-poller", poller))
	tree.AddPollingService(services.NewRunService("uptime-gauge", func(ctx context.Context) error {
		return trackUptime(ctx, startTime)
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Signboard stopped")
}

// trackUptime refreshes the uptime gauge until ctx is canceled.
func trackUptime(ctx context.Context, start time.Time) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	metrics.AppUptime.Set(time.Since(start).Seconds())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
