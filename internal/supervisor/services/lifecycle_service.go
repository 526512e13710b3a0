// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle shared by *links.Store and
// *liveness.Poller: Start spawns the background loop and returns, Stop
// blocks until that loop has exited.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// LifecycleService adapts a StartStopManager to suture's Serve pattern:
//  1. Calls Start(ctx)
//  2. Waits for context cancellation
//  3. Calls Stop() for graceful shutdown
type LifecycleService struct {
	manager StartStopManager
	name    string
}

// NewLifecycleService creates a wrapper identified by name in supervisor logs.
//
// Example usage:
//
//	store := links.NewStore(api, cfg.Links)
//	tree.AddPollingService(services.NewLifecycleService("links-store", store))
func NewLifecycleService(name string, manager StartStopManager) *LifecycleService {
	return &LifecycleService{
		manager: manager,
		name:    name,
	}
}

// Serve implements suture.Service.
//
// A Start failure is returned immediately so suture restarts the service
// according to its backoff policy.
func (s *LifecycleService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *LifecycleService) String() string {
	return s.name
}
