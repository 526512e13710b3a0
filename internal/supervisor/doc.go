// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

/*
Package supervisor provides process supervision for Signboard using suture v4.

Every long-running component runs under a two-layer tree:

	RootSupervisor ("signboard")
	├── PollingSupervisor ("polling-layer")
	│   ├── links-store      (links.Store, Start/Stop)
	│   ├── liveness-poller  (liveness.Poller, Start/Stop)
	│   └── websocket-hub    (websocket.Hub.RunWithContext)
	└── APISupervisor ("api-layer")
	    └── http-server      (net/http.Server)

A crashed poller is restarted with exponential backoff inside its own
layer. The HTTP server keeps answering from the last good snapshot while
that happens.

Supervisor events are logged through sutureslog. Pass the slog logger from
logging.NewSlogLogger so they land in the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPollingService(services.NewLifecycleService("links-store", store))
	tree.AddPollingService(services.NewLifecycleService("liveness-poller", poller))
	tree.AddPollingService(services.NewRunService("websocket-hub", hub.RunWithContext))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

After Serve returns, UnstoppedServiceReport lists services that ignored
the shutdown timeout.
*/
package supervisor
