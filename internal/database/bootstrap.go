package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SchemaState is the lifecycle position of the cold-start guard.
type SchemaState int32

const (
	StateUninitialized SchemaState = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s SchemaState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InitFunc materializes the schema. Schema.Ensure is the production value.
type InitFunc func(ctx context.Context) error

// Snapshot is a point-in-time view of the guard for diagnostics.
type Snapshot struct {
	State     SchemaState
	Attempts  int64
	LastError error
	ReadyAt   time.Time
}

// Bootstrapper runs schema materialization at most once at a time and
// remembers success. Concurrent callers arriving while an attempt is in
// flight wait for that attempt instead of starting their own; a failed
// attempt is reported to all of its waiters and the next caller retries.
type Bootstrapper struct {
	init    InitFunc
	timeout time.Duration
	logger  *zap.Logger

	group    singleflight.Group
	state    atomic.Int32
	attempts atomic.Int64

	mu      sync.Mutex
	lastErr error
	readyAt time.Time
}

// NewBootstrapper creates a guard around init. A positive timeout bounds each
// attempt independently of the caller that happened to trigger it.
func NewBootstrapper(init InitFunc, timeout time.Duration, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		init:    init,
		timeout: timeout,
		logger:  logger,
	}
}

// State returns the current lifecycle state.
func (b *Bootstrapper) State() SchemaState {
	return SchemaState(b.state.Load())
}

// Snapshot returns state, attempt count and the most recent failure.
func (b *Bootstrapper) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		State:     b.State(),
		Attempts:  b.attempts.Load(),
		LastError: b.lastErr,
		ReadyAt:   b.readyAt,
	}
}

// Ensure blocks until the schema is ready, the shared attempt fails, or ctx
// is done. Once ready it returns nil without any synchronization cost beyond
// an atomic load.
func (b *Bootstrapper) Ensure(ctx context.Context) error {
	if b.State() == StateReady {
		return nil
	}

	ch := b.group.DoChan("schema", func() (interface{}, error) {
		// A previous flight may have finished between the fast-path check and
		// joining the group.
		if b.State() == StateReady {
			return nil, nil
		}
		return nil, b.attempt(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bootstrapper) attempt(ctx context.Context) error {
	attempt := b.attempts.Add(1)
	b.state.Store(int32(StateInitializing))
	b.logger.Info("Schema initialization started", zap.Int64("attempt", attempt))

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	err := b.runInit(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		b.lastErr = err
		b.state.Store(int32(StateFailed))
		b.logger.Error("Schema initialization failed",
			zap.Int64("attempt", attempt),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	b.lastErr = nil
	b.readyAt = time.Now()
	b.state.Store(int32(StateReady))
	b.logger.Info("Schema ready",
		zap.Int64("attempt", attempt),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// runInit converts a panic in init into an error. singleflight re-raises
// panics on a fresh goroutine where no HTTP recovery can catch them.
func (b *Bootstrapper) runInit(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("Schema initialization panicked",
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			err = fmt.Errorf("schema initialization panicked: %v", rec)
		}
	}()
	return b.init(ctx)
}
