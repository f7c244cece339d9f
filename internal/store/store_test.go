package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

func sampleState() *model.SystemState {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	factor := decimal.RequireFromString("0.45")
	return &model.SystemState{
		BalanceCapital:        money.FromReais(1000),
		BalanceResults:        450,
		TotalContributed:      money.FromReais(1000),
		LastPerformanceFactor: factor,
		CurrentVirtualDate:    day,
		Investments: []model.Investment{
			{ID: "inv-1", Amount: money.FromReais(1000), StartDate: day, LockupDate: day.AddDate(0, 0, 90), Status: model.InvestmentActive},
		},
		Transactions: []model.Transaction{
			{ID: "tx-2", Type: model.TxResultDistribution, Amount: 450, Date: day, Status: model.StatusCompleted, PerformanceFactor: &factor},
			{ID: "tx-1", Type: model.TxContribution, Amount: money.FromReais(1000), Date: day, Status: model.StatusCompleted},
		},
		Users:     []model.UserProfile{{ID: "u1", Name: "Ana", Role: model.RoleClient}},
		Referrals: []model.Referral{},
	}
}

func assertRoundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := st.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.CurrentVirtualDate.IsZero())
	assert.Nil(t, empty.Users)

	want := sampleState()
	require.NoError(t, st.Save(ctx, want))
	assert.False(t, want.UpdatedAt.IsZero())

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.BalanceCapital, got.BalanceCapital)
	assert.Equal(t, want.BalanceResults, got.BalanceResults)
	assert.True(t, want.LastPerformanceFactor.Equal(got.LastPerformanceFactor))
	assert.True(t, want.CurrentVirtualDate.Equal(got.CurrentVirtualDate))
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "tx-2", got.Transactions[0].ID)
	require.NotNil(t, got.Transactions[0].PerformanceFactor)
	assert.True(t, factorEqual(*got.Transactions[0].PerformanceFactor, "0.45"))
	assert.NotNil(t, got.Referrals)
	assert.Empty(t, got.Referrals)
}

func factorEqual(d decimal.Decimal, want string) bool {
	return d.Equal(decimal.RequireFromString(want))
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	st := NewFileStore(filepath.Join(t.TempDir(), "data", "state.json"))
	assertRoundTrip(t, st)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore()
	assertRoundTrip(t, st)
	assert.Contains(t, string(st.Raw()), `"balanceCapital": 100000`)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assertRoundTrip(t, st)

	// A second save replaces the single row.
	next := sampleState()
	next.BalanceCapital = 1
	require.NoError(t, st.Save(context.Background(), next))

	var rows int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(*) FROM kv_store`).Scan(&rows))
	assert.Equal(t, 1, rows)

	got, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1), got.BalanceCapital)
}

func TestLegacyStateWithoutRosters(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"balanceCapital": 5000, "transactions": [], "investments": []}`)
	got, err := decodeState(raw)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(5000), got.BalanceCapital)
	assert.Nil(t, got.Users)
	assert.Nil(t, got.Referrals)
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "redis", "", "")
	assert.Error(t, err)
}
