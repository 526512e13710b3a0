// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package services

import "context"

// RunFunc blocks until ctx is canceled. *websocket.Hub's RunWithContext
// has this shape.
type RunFunc func(ctx context.Context) error

// RunService supervises a context-aware run loop.
//
// Example usage:
//
//	hub := websocket.NewHub()
//	tree.AddPollingService(services.NewRunService("websocket-hub", hub.RunWithContext))
type RunService struct {
	run  RunFunc
	name string
}

// NewRunService creates a named run loop service.
func NewRunService(name string, run RunFunc) *RunService {
	return &RunService{run: run, name: name}
}

// Serve implements suture.Service.
func (r *RunService) Serve(ctx context.Context) error {
	return r.run(ctx)
}

// String implements fmt.Stringer for logging.
func (r *RunService) String() string {
	return r.name
}
