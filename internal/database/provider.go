package database

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// PoolOptions configures the connection pool of a backend.
type PoolOptions struct {
	MaxOpenConns int
	MaxIdleConns int
}

// OpenFunc opens a DriverReader for a database URL.
type OpenFunc func(ctx context.Context, rawURL string, opts PoolOptions) (DriverReader, error)

var (
	backends   = make(map[string]OpenFunc)
	backendsMu sync.RWMutex
)

// RegisterBackend registers a backend for the given URL schemes.
// This is called by the backend packages to avoid import cycles.
func RegisterBackend(open OpenFunc, schemes ...string) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	for _, s := range schemes {
		backends[strings.ToLower(s)] = open
	}
}

// Schemes lists the registered URL schemes.
func Schemes() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, 0, len(backends))
	for s := range backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Scheme returns the backend scheme of a database URL. A value without "://" is a sqlite file path.
func Scheme(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return "sqlite"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		// mysql DSNs like "user:pass@tcp(host)/db" do not parse as URLs
		scheme, _, _ := strings.Cut(rawURL, "://")
		return strings.ToLower(scheme)
	}
	return strings.ToLower(u.Scheme)
}

// Open dispatches to the backend registered for the URL scheme.
func Open(ctx context.Context, rawURL string, opts PoolOptions) (DriverReader, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("drivers database URL is required")
	}
	scheme := Scheme(rawURL)

	backendsMu.RLock()
	open, ok := backends[scheme]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported drivers database scheme %q (registered: %s)", scheme, strings.Join(Schemes(), ", "))
	}
	return open(ctx, rawURL, opts)
}
