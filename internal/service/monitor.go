package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"walletwatch/internal/app/port"
	"walletwatch/internal/domain/entity"
	"walletwatch/pkg/metrics"
)

const (
	defaultPollInterval    = 500 * time.Millisecond
	defaultFlushInterval   = 5 * time.Second
	defaultMaxPending      = 16
	defaultBreakerLimit    = 5
	defaultBreakerCooldown = 30 * time.Second
)

// MonitorOptions configures a single wallet monitor.
type MonitorOptions struct {
	Name                string
	Chain               string
	TrackedAssets       []string
	PollInterval        time.Duration
	FlushInterval       time.Duration
	FetchTimeout        time.Duration
	MaxPending          int
	BreakerFailureLimit int
	BreakerCooldown     time.Duration
}

// Monitor owns the polling state machine for one wallet: balance diffing,
// event buffering and notification flushing. All balance state is mutated
// only by the Run loop; concurrent readers go through Status.
type Monitor struct {
	name          string
	chain         string
	wallet        port.Wallet
	sink          port.NotificationSink
	logger        *zap.Logger
	trackedAssets []string

	pollInterval  time.Duration
	flushInterval time.Duration
	fetchTimeout  time.Duration
	maxPending    int

	mu          sync.Mutex
	lastBalance map[string]decimal.Decimal
	pending     []entity.BalanceEvent

	breakers map[string]*gobreaker.CircuitBreaker
}

// NewMonitor builds a monitor for the given wallet adapter. Tracked assets
// the adapter does not support are dropped with a warning so the loop never
// polls symbols that can only fail locally.
func NewMonitor(wallet port.Wallet, sink port.NotificationSink, opts MonitorOptions, logger *zap.Logger) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.FetchTimeout <= 0 || opts.FetchTimeout > opts.PollInterval {
		opts.FetchTimeout = opts.PollInterval
	}
	if opts.MaxPending <= 0 {
		opts.MaxPending = defaultMaxPending
	}
	if opts.BreakerFailureLimit <= 0 {
		opts.BreakerFailureLimit = defaultBreakerLimit
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = defaultBreakerCooldown
	}
	if opts.Name == "" {
		opts.Name = wallet.Address()
	}

	log := logger.Named("Monitor").With(zap.String("wallet", opts.Name))

	supported := wallet.SupportedAssets()
	tracked := make([]string, 0, len(opts.TrackedAssets))
	for _, asset := range opts.TrackedAssets {
		if !slices.Contains(supported, asset) {
			log.Warn("Dropping tracked asset not supported by adapter",
				zap.String("asset", asset), zap.Strings("supported", supported))
			continue
		}
		tracked = append(tracked, asset)
	}

	m := &Monitor{
		name:          opts.Name,
		chain:         opts.Chain,
		wallet:        wallet,
		sink:          sink,
		logger:        log,
		trackedAssets: tracked,
		pollInterval:  opts.PollInterval,
		flushInterval: opts.FlushInterval,
		fetchTimeout:  opts.FetchTimeout,
		maxPending:    opts.MaxPending,
		lastBalance:   make(map[string]decimal.Decimal, len(tracked)),
		breakers:      make(map[string]*gobreaker.CircuitBreaker, len(tracked)),
	}

	for _, asset := range tracked {
		m.breakers[asset] = m.newBreaker(asset, opts.BreakerFailureLimit, opts.BreakerCooldown)
	}
	return m
}

// newBreaker builds the per-asset fetch circuit breaker. Repeated
// consecutive failures suspend fetching for that asset until the cooldown
// elapses; the open transition is surfaced at error level for the operator.
func (m *Monitor) newBreaker(asset string, failureLimit int, cooldown time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    m.name + "/" + asset,
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failureLimit)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerTransitionsTotal.WithLabelValues(m.name, asset, to.String()).Inc()
			if to == gobreaker.StateOpen {
				m.logger.Error("Repeated balance fetch failures, suspending asset",
					zap.String("asset", asset), zap.String("from", from.String()))
				return
			}
			m.logger.Info("Fetch breaker state changed",
				zap.String("asset", asset),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Name returns the monitor's configured name.
func (m *Monitor) Name() string {
	return m.name
}

// Run drives the poll and flush timers until ctx is canceled. Pending events
// are flushed once on the way out so detected gains are not lost on
// shutdown.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Wallet monitor starting",
		zap.String("chain", m.chain),
		zap.String("address", m.wallet.Address()),
		zap.String("capability", string(m.wallet.Capability())),
		zap.Strings("trackedAssets", m.trackedAssets),
		zap.Duration("pollInterval", m.pollInterval),
		zap.Duration("flushInterval", m.flushInterval))

	pollTicker := time.NewTicker(m.pollInterval)
	defer pollTicker.Stop()
	flushTicker := time.NewTicker(m.flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Flush()
			m.logger.Info("Wallet monitor stopped")
			return nil
		case <-pollTicker.C:
			m.PollOnce(ctx)
		case <-flushTicker.C:
			m.Flush()
		}
	}
}

type fetchResult struct {
	asset   string
	balance decimal.Decimal
	err     error
}

// PollOnce runs a single poll cycle: fetch every tracked asset, then apply
// strict-increase diffing in tracked-asset order. Fetches run concurrently;
// diffs are applied sequentially so event order is deterministic within a
// cycle. A full buffer triggers an immediate flush.
func (m *Monitor) PollOnce(ctx context.Context) {
	results := make([]fetchResult, len(m.trackedAssets))
	eg, fetchCtx := errgroup.WithContext(ctx)
	for i, asset := range m.trackedAssets {
		eg.Go(func() error {
			balance, err := m.fetchBalance(fetchCtx, asset)
			results[i] = fetchResult{asset: asset, balance: balance, err: err}
			return nil
		})
	}
	// Goroutines only record results, the group never returns an error.
	_ = eg.Wait()

	now := time.Now()
	full := false

	m.mu.Lock()
	for _, res := range results {
		if res.err != nil {
			if errors.Is(res.err, gobreaker.ErrOpenState) {
				m.logger.Debug("Skipping asset, fetch breaker open", zap.String("asset", res.asset))
				continue
			}
			kind := entity.KindOf(res.err)
			if errors.Is(res.err, context.DeadlineExceeded) {
				kind = entity.KindNetwork
			}
			metrics.PollErrorsTotal.WithLabelValues(m.name, res.asset, string(kind)).Inc()
			m.logger.Warn("Balance fetch failed, skipping asset for this cycle",
				zap.String("asset", res.asset), zap.String("kind", string(kind)), zap.Error(res.err))
			continue
		}

		prev, seen := m.lastBalance[res.asset]
		if !seen {
			// First successful observation establishes the baseline without
			// producing a synthetic gain event.
			m.lastBalance[res.asset] = res.balance
			m.logger.Debug("Baseline balance established",
				zap.String("asset", res.asset), zap.String("balance", res.balance.String()))
			continue
		}

		if res.balance.GreaterThan(prev) {
			delta := res.balance.Sub(prev)
			m.pending = append(m.pending, entity.BalanceEvent{
				Asset:      res.asset,
				Delta:      delta,
				ObservedAt: now,
			})
			metrics.BalanceEventsTotal.WithLabelValues(m.name, res.asset).Inc()
			m.logger.Info("Balance increase detected",
				zap.String("asset", res.asset),
				zap.String("delta", delta.String()),
				zap.String("balance", res.balance.String()))
		}
		// Decreases and equalities re-baseline silently; updating here also
		// guarantees a gain is never re-reported even when the flush lags.
		m.lastBalance[res.asset] = res.balance
	}
	full = len(m.pending) >= m.maxPending
	m.mu.Unlock()

	metrics.PollsTotal.WithLabelValues(m.name).Inc()
	if full {
		m.Flush()
	}
}

// fetchBalance performs one bounded adapter call through the asset's circuit
// breaker.
func (m *Monitor) fetchBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	out, err := m.breakers[asset].Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
		defer cancel()
		return m.wallet.FetchBalance(callCtx, asset)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return out.(decimal.Decimal), nil
}

// Flush combines all buffered events into one message, emits it and clears
// the buffer. The swap happens under the lock so no event can land in two
// messages or be dropped between append and flush. An empty buffer emits
// nothing.
func (m *Monitor) Flush() {
	m.mu.Lock()
	events := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(events) == 0 {
		return
	}

	text := FormatNotification(events)
	m.sink.Emit(text)
	metrics.NotificationsTotal.WithLabelValues(m.name).Inc()
	m.logger.Info("Notification flushed",
		zap.Int("events", len(events)), zap.String("message", text))
}

// Transfer passes a transfer request straight through to the adapter. The
// polling path never consults capability; only this and SignMessage do, and
// the check itself lives in the adapter.
func (m *Monitor) Transfer(ctx context.Context, toAddress string, amount decimal.Decimal, asset string) (entity.TransferResult, error) {
	res, err := m.wallet.Transfer(ctx, toAddress, amount, asset)
	metrics.WriteOpsTotal.WithLabelValues(m.name, "transfer", string(res.Status)).Inc()
	if err != nil {
		m.logger.Warn("Transfer failed",
			zap.String("asset", asset),
			zap.String("to", toAddress),
			zap.String("kind", string(entity.KindOf(err))),
			zap.Error(err))
		return res, err
	}
	m.logger.Info("Transfer submitted",
		zap.String("asset", asset),
		zap.String("to", toAddress),
		zap.String("txHash", res.TxHash))
	return res, nil
}

// SignMessage passes a signing request straight through to the adapter.
func (m *Monitor) SignMessage(ctx context.Context, message string) (entity.SignResult, error) {
	res, err := m.wallet.SignMessage(ctx, message)
	metrics.WriteOpsTotal.WithLabelValues(m.name, "sign", string(res.Status)).Inc()
	if err != nil {
		m.logger.Warn("Message signing failed",
			zap.String("kind", string(entity.KindOf(err))), zap.Error(err))
		return res, err
	}
	m.logger.Info("Message signed")
	return res, nil
}

// Status returns a point-in-time snapshot of the wallet for the API.
func (m *Monitor) Status() entity.WalletStatus {
	m.mu.Lock()
	balances := make(map[string]decimal.Decimal, len(m.lastBalance))
	for asset, bal := range m.lastBalance {
		balances[asset] = bal
	}
	m.mu.Unlock()

	return entity.WalletStatus{
		Name:            m.name,
		Chain:           m.chain,
		Address:         m.wallet.Address(),
		Capability:      m.wallet.Capability(),
		SupportedAssets: m.wallet.SupportedAssets(),
		TrackedAssets:   slices.Clone(m.trackedAssets),
		Balances:        balances,
	}
}

// PendingEvents returns a copy of the buffered events. Intended for tests
// and the status surface; the buffer itself is owned by the poll loop.
func (m *Monitor) PendingEvents() []entity.BalanceEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pending)
}
