// Package store provides the public factory for sheet stores. It selects a
// backend implementation by name while keeping the implementations internal.
package store

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/etable/internal/bolt"
	"github.com/mesh-intelligence/etable/internal/sqlite"
	"github.com/mesh-intelligence/etable/pkg/types"
)

// New creates a detached sheet store for cfg.Backend. Call Attach with the
// same Config to initialize it.
func New(cfg types.Config, logger *slog.Logger) (types.SheetStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(logger), nil
	case types.BackendBolt:
		return bolt.NewBackend(logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
}

// Open creates the store for cfg and attaches it. The caller must Detach.
//
// Example:
//
//	s, err := store.Open(types.Config{
//	    Backend: types.BackendBolt,
//	    DataDir: ".etable-db",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer s.Detach()
func Open(cfg types.Config, logger *slog.Logger) (types.SheetStore, error) {
	s, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", cfg.Backend, err)
	}
	return s, nil
}
