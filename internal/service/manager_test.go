package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManagerLookup(t *testing.T) {
	walletA := newFakeWallet("eth")
	walletB := newFakeWallet("sol")
	sink := &captureSink{}

	a := NewMonitor(walletA, sink, MonitorOptions{Name: "a", TrackedAssets: []string{"eth"}}, zap.NewNop())
	b := NewMonitor(walletB, sink, MonitorOptions{Name: "b", TrackedAssets: []string{"sol"}}, zap.NewNop())
	mgr := NewManager([]*Monitor{a, b}, zap.NewNop())

	got, ok := mgr.Monitor("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.Name())

	_, ok = mgr.Monitor("c")
	assert.False(t, ok)
	assert.Len(t, mgr.Monitors(), 2)
}

func TestManagerRequiresMonitors(t *testing.T) {
	mgr := NewManager(nil, zap.NewNop())
	require.Error(t, mgr.Run(context.Background()))
}

func TestManagerRunsAllMonitors(t *testing.T) {
	walletA := newFakeWallet("eth")
	walletA.setBalance("eth", "1")
	walletB := newFakeWallet("sol")
	walletB.setBalance("sol", "2")
	sink := &captureSink{}

	opts := func(name, asset string) MonitorOptions {
		return MonitorOptions{
			Name:          name,
			TrackedAssets: []string{asset},
			PollInterval:  5 * time.Millisecond,
			FlushInterval: time.Hour,
		}
	}
	mgr := NewManager([]*Monitor{
		NewMonitor(walletA, sink, opts("a", "eth"), zap.NewNop()),
		NewMonitor(walletB, sink, opts("b", "sol"), zap.NewNop()),
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	require.Eventually(t, func() bool {
		return walletA.calls("eth") > 0 && walletB.calls("sol") > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
