// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package backend

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/signboard/internal/config"
	"github.com/tomtom215/signboard/internal/logging"
)

// TokenProvider supplies the bearer token sent to backends. An empty token
// means no Authorization header.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token implements TokenProvider.
func (s StaticToken) Token(context.Context) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// FileToken reads the bearer token from a file and re-reads it whenever the
// file's modification time or size changes, so rotated secrets are picked up
// without a restart.
type FileToken struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	token   string
	loaded  bool
}

// NewFileToken creates a FileToken for path. The file is read lazily.
func NewFileToken(path string) *FileToken {
	return &FileToken{path: path}
}

// Token implements TokenProvider.
func (f *FileToken) Token(context.Context) (string, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return f.token, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	f.token = strings.TrimSpace(string(data))
	f.modTime = info.ModTime()
	f.size = info.Size()
	f.loaded = true
	logging.Info().Str("path", f.path).Str("token", logging.SanitizeToken(f.token)).Msg("Backend auth token loaded")
	return f.token, nil
}

// NewTokenProvider returns a FileToken when a token file is configured and a
// StaticToken otherwise.
func NewTokenProvider(cfg config.HTTPClientConfig) TokenProvider {
	if cfg.AuthTokenFile != "" {
		return NewFileToken(cfg.AuthTokenFile)
	}
	return StaticToken(cfg.AuthToken)
}
