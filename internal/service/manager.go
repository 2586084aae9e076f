package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Manager runs a set of wallet monitors concurrently. Each monitor owns its
// state machine; the manager only handles lifecycle and lookup.
type Manager struct {
	logger   *zap.Logger
	monitors []*Monitor
	byName   map[string]*Monitor
}

// NewManager builds a manager over the given monitors. Monitor names are
// unique (enforced by config validation).
func NewManager(monitors []*Monitor, logger *zap.Logger) *Manager {
	byName := make(map[string]*Monitor, len(monitors))
	for _, m := range monitors {
		byName[m.Name()] = m
	}
	return &Manager{
		logger:   logger.Named("Manager"),
		monitors: monitors,
		byName:   byName,
	}
}

// Run starts every monitor loop and blocks until ctx is canceled and all
// loops have drained.
func (mgr *Manager) Run(ctx context.Context) error {
	if len(mgr.monitors) == 0 {
		return fmt.Errorf("no wallet monitors configured")
	}
	mgr.logger.Info("Starting wallet monitors", zap.Int("count", len(mgr.monitors)))

	eg, runCtx := errgroup.WithContext(ctx)
	for _, m := range mgr.monitors {
		eg.Go(func() error {
			return m.Run(runCtx)
		})
	}
	return eg.Wait()
}

// Monitor returns the monitor registered under name.
func (mgr *Manager) Monitor(name string) (*Monitor, bool) {
	m, ok := mgr.byName[name]
	return m, ok
}

// Monitors returns all monitors in configuration order.
func (mgr *Manager) Monitors() []*Monitor {
	return mgr.monitors
}
