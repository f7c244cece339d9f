package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/store"
)

// Change is the state before and after a successful mutation.
type Change struct {
	Before model.SystemState
	After  model.SystemState
}

// Manager runs engine operations against a store. Each call reads the whole
// state, applies one operation and writes the whole state back. The mutex
// serializes callers inside this process only; separate processes sharing a
// store are last-write-wins.
type Manager struct {
	mu     sync.Mutex
	engine *Engine
	store  store.Store
	clock  func() time.Time
}

// NewManager creates a Manager, initializing and saving a fresh state when
// the store is empty. clock only seeds the virtual calendar of a new state;
// nil means time.Now.
func NewManager(ctx context.Context, st store.Store, engine *Engine, clock func() time.Time) (*Manager, error) {
	if engine == nil {
		engine = NewEngine()
	}
	if clock == nil {
		clock = time.Now
	}
	m := &Manager{engine: engine, store: st, clock: clock}

	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.save(ctx, &state); err != nil {
		return nil, err
	}
	return m, nil
}

// Engine returns the rules engine used by the manager.
func (m *Manager) Engine() *Engine { return m.engine }

// State returns the current persisted state.
func (m *Manager) State(ctx context.Context) (model.SystemState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Contribute records a deposit.
func (m *Manager) Contribute(ctx context.Context, who model.Identity, amount money.Cents) (Change, error) {
	return m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		return m.engine.Contribute(s, amount, who)
	})
}

// RequestRedemption queues a redemption and returns the user-facing message.
func (m *Manager) RequestRedemption(ctx context.Context, req RedemptionRequest) (Change, string, error) {
	var msg string
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.RequestRedemption(s, req)
		msg = out
		return next, err
	})
	return ch, msg, err
}

// Approve completes a pending transaction.
func (m *Manager) Approve(ctx context.Context, txID string) (Change, model.Transaction, error) {
	var tx model.Transaction
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.Approve(s, txID)
		tx = out
		return next, err
	})
	return ch, tx, err
}

// Reject refuses a pending transaction and refunds its hold.
func (m *Manager) Reject(ctx context.Context, txID string) (Change, model.Transaction, error) {
	var tx model.Transaction
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.Reject(s, txID)
		tx = out
		return next, err
	})
	return ch, tx, err
}

// ProcessManualPerformance runs one business day at the given percentage.
func (m *Manager) ProcessManualPerformance(ctx context.Context, pct decimal.Decimal) (Change, Distribution, error) {
	var dist Distribution
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.ProcessManualPerformance(s, pct)
		dist = out
		return next, err
	})
	return ch, dist, err
}

// ProcessPerformanceDistribution runs one business day at a random percentage.
func (m *Manager) ProcessPerformanceDistribution(ctx context.Context) (Change, Distribution, error) {
	var dist Distribution
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.ProcessPerformanceDistribution(s)
		dist = out
		return next, err
	})
	return ch, dist, err
}

// Reinvest moves the results balance into capital.
func (m *Manager) Reinvest(ctx context.Context, who model.Identity) (Change, money.Cents, error) {
	var amount money.Cents
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.Reinvest(s, who)
		amount = out
		return next, err
	})
	return ch, amount, err
}

// CreateUser adds a client to the roster.
func (m *Manager) CreateUser(ctx context.Context, in NewUser) (Change, model.UserProfile, error) {
	var u model.UserProfile
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out := m.engine.CreateUser(s, in)
		u = out
		return next, nil
	})
	return ch, u, err
}

// ToggleVerification flips a user's KYC flag.
func (m *Manager) ToggleVerification(ctx context.Context, userID string) (Change, model.UserProfile, error) {
	var u model.UserProfile
	ch, err := m.update(ctx, func(s model.SystemState) (model.SystemState, error) {
		next, out, err := m.engine.ToggleVerification(s, userID)
		u = out
		return next, err
	})
	return ch, u, err
}

func (m *Manager) update(ctx context.Context, fn func(model.SystemState) (model.SystemState, error)) (Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before, err := m.load(ctx)
	if err != nil {
		return Change{}, err
	}
	after, err := fn(before)
	if err != nil {
		return Change{Before: before, After: before}, err
	}
	if err := m.save(ctx, &after); err != nil {
		return Change{Before: before, After: before}, err
	}
	return Change{Before: before, After: after}, nil
}

func (m *Manager) load(ctx context.Context) (model.SystemState, error) {
	state, err := m.store.Load(ctx)
	if err != nil {
		return model.SystemState{}, fmt.Errorf("load state: %w", err)
	}
	return m.engine.Migrate(*state, m.clock()), nil
}

func (m *Manager) save(ctx context.Context, state *model.SystemState) error {
	if err := m.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
