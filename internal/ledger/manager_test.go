package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/store"
)

func fixedClock() time.Time { return day0.Add(9 * time.Hour) }

func newTestManager(t *testing.T, st store.Store) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), st, testEngine(), fixedClock)
	require.NoError(t, err)
	return m
}

func TestNewManagerInitializesEmptyStore(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	newTestManager(t, st)

	raw, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, raw.CurrentVirtualDate.Equal(day0))
	assert.Len(t, raw.Users, 3)
}

func TestManagerPersistsEveryMutation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	m := newTestManager(t, store.NewFileStore(path))

	ch, err := m.Contribute(ctx, client, money.FromReais(1000))
	require.NoError(t, err)
	assert.Zero(t, ch.Before.BalanceCapital)
	assert.Equal(t, money.FromReais(1000), ch.After.BalanceCapital)

	_, dist, err := m.ProcessManualPerformance(ctx, pct("1.0"))
	require.NoError(t, err)
	assert.Equal(t, money.FromReais(10), dist.Result)

	// A second manager on the same file sees everything.
	other := newTestManager(t, store.NewFileStore(path))
	s, err := other.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.FromReais(1000), s.BalanceCapital)
	assert.Equal(t, money.FromReais(10), s.BalanceResults)
	assert.True(t, s.CurrentVirtualDate.Equal(day0.AddDate(0, 0, 1)))
	assert.Len(t, s.Transactions, 2)
}

func TestManagerDoesNotSaveOnRuleError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.NewMemoryStore()
	m := newTestManager(t, st)
	_, err := m.Contribute(ctx, client, money.FromReais(1000))
	require.NoError(t, err)
	before := st.Raw()

	ch, msg, err := m.RequestRedemption(ctx, RedemptionRequest{Amount: money.FromReais(500), Pool: model.PoolCapital, Requester: client})
	assert.ErrorIs(t, err, ErrLockupPeriod)
	assert.Empty(t, msg)
	assert.Equal(t, ch.Before.BalanceCapital, ch.After.BalanceCapital)
	assert.Equal(t, before, st.Raw())

	_, _, err = m.Approve(ctx, "missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	_, _, err = m.Reinvest(ctx, client)
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, before, st.Raw())
}

func TestManagerRedemptionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore())
	_, err := m.Contribute(ctx, client, money.FromReais(2000))
	require.NoError(t, err)
	for i := 0; i < 90; i++ {
		_, _, err := m.ProcessPerformanceDistribution(ctx)
		require.NoError(t, err)
	}

	ch, msg, err := m.RequestRedemption(ctx, RedemptionRequest{Amount: money.FromReais(500), Pool: model.PoolCapital, Requester: client})
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Equal(t, 1, ch.After.PendingApprovals())
	txID := ch.After.Transactions[0].ID

	ch, tx, err := m.Reject(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, tx.Status)
	assert.Equal(t, ch.Before.BalanceCapital+money.FromReais(500), ch.After.BalanceCapital)
	assert.Zero(t, ch.After.PendingApprovals())

	ch, u, err := m.CreateUser(ctx, NewUser{Name: "Bruno", Email: "bruno@exemplo.com"})
	require.NoError(t, err)
	assert.Len(t, ch.After.Users, 4)
	_, u, err = m.ToggleVerification(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
}

type failingStore struct{ store.MemoryStore }

func (f *failingStore) Save(context.Context, *model.SystemState) error {
	return errors.New("disk full")
}

func TestManagerSurfacesStoreErrors(t *testing.T) {
	t.Parallel()

	_, err := NewManager(context.Background(), &failingStore{}, testEngine(), fixedClock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save state")
}

func TestManagerSerializesConcurrentCallers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := NewManager(ctx, store.NewMemoryStore(), NewEngine(), fixedClock)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Contribute(ctx, client, money.FromReais(10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := m.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.FromReais(200), s.BalanceCapital)
	assert.Len(t, s.Investments, 20)
}
