package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"FundDesk/internal/desk"
	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/store"
)

var (
	testSecret = []byte("0123456789abcdef0123")
	day0       = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	adminID    = model.Identity{ID: "demo-admin", Name: "Admin Demo", Role: model.RoleAdmin}
	clientID   = model.Identity{ID: "demo-client", Name: "Cliente Demo", Role: model.RoleClient}
)

type testServer struct {
	t      *testing.T
	router http.Handler
	desk   *desk.Desk
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	n := 0
	engine := ledger.NewEngine()
	engine.NewID = func() string { n++; return fmt.Sprintf("tx-%d", n) }
	engine.Rand = func() float64 { return 0.5 }
	mgr, err := ledger.NewManager(context.Background(), store.NewMemoryStore(), engine, func() time.Time { return day0 })
	require.NoError(t, err)

	d := desk.New(mgr, desk.Options{MinContribution: money.FromReais(100)})
	t.Cleanup(d.Wait)
	return &testServer{t: t, router: NewRouter(NewHandler(d, testSecret, nil), []string{"*"}), desk: d}
}

func (s *testServer) token(who model.Identity) string {
	s.t.Helper()
	tok, err := IssueToken(testSecret, who, time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path string, who *model.Identity, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*who))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[errorBody](t, rec).Error.Code
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/state", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := IssueToken([]byte("another-secret-entirely"), adminID, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/admin/pending", &clientID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestParseTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := IssueToken(testSecret, adminID, time.Hour)
	require.NoError(t, err)
	who, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, adminID, who)

	expired, err := IssueToken(testSecret, adminID, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)
}

func TestContributionAndState(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": "50"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_AMOUNT", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": 1000.5})
	require.Equal(t, http.StatusCreated, rec.Code)
	tx := decode[model.Transaction](t, rec)
	assert.Equal(t, money.Cents(100050), tx.Amount)
	assert.Equal(t, model.TxContribution, tx.Type)

	rec = s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": 1, "extra": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/state", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[ledger.Snapshot](t, rec)
	assert.Equal(t, money.Cents(100050), snap.BalanceCapital)
	assert.Zero(t, snap.LiquidCapital)
	assert.Equal(t, "2026-10-19", snap.CurrentVirtualDate.Format(time.DateOnly))
}

func TestOversizedAmountsAreRefused(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	// 9e16 reais does not fit in int64 centavos.
	bodies := map[string]map[string]any{
		"/api/v1/contributions": {"amount": "9e16"},
		"/api/v1/redemptions":   {"amount": "9e16", "type": "RESULT"},
	}
	for path, body := range bodies {
		rec := s.do(http.MethodPost, path, &clientID, body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
		assert.Equal(t, "AMOUNT_TOO_LARGE", errorCode(t, rec), path)
	}

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": "1000"}).Code)
	rec := s.do(http.MethodPost, "/api/v1/admin/performance", &adminID, map[string]any{"percentage": "1e30"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_PERCENTAGE", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/v1/state", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[ledger.Snapshot](t, rec)
	assert.Equal(t, money.FromReais(1000), snap.BalanceCapital)
	assert.Zero(t, snap.BalanceResults)
}

func TestRedemptionApprovalFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": "1000"}).Code)

	rec := s.do(http.MethodPost, "/api/v1/admin/performance", &adminID, map[string]any{"percentage": "2.5"})
	require.Equal(t, http.StatusOK, rec.Code)
	dist := decode[ledger.Distribution](t, rec)
	assert.Equal(t, money.FromReais(25), dist.Result)

	rec = s.do(http.MethodPost, "/api/v1/redemptions", &clientID, map[string]any{"amount": "500", "type": "CAPITAL"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "LOCKUP_PERIOD", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/redemptions", &clientID, map[string]any{"amount": "10", "type": "result", "date": "2026-10-01"})
	assert.Equal(t, "RETROACTIVE_DATE", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/redemptions", &clientID, map[string]any{"amount": "10", "type": "result", "date": "22/10/2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/redemptions", &clientID, map[string]any{"amount": "10", "type": "RESULT"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	out := decode[struct {
		Message     string            `json:"message"`
		Transaction model.Transaction `json:"transaction"`
	}](t, rec)
	assert.Contains(t, out.Message, "R$ 10,00")
	txID := out.Transaction.ID

	rec = s.do(http.MethodGet, "/api/v1/admin/pending", &adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Transaction](t, rec), 1)

	rec = s.do(http.MethodPost, "/api/v1/admin/transactions/"+txID+"/approve", &adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCompleted, decode[model.Transaction](t, rec).Status)

	rec = s.do(http.MethodPost, "/api/v1/admin/transactions/"+txID+"/reject", &adminID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_PENDING", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/v1/admin/transactions/missing/approve", &adminID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReinvestAndLiquidity(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/v1/reinvestments", &clientID, nil)
	assert.Equal(t, "NO_RESULTS", errorCode(t, rec))

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": "1000"}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/admin/performance/auto", &adminID, nil).Code)

	rec = s.do(http.MethodPost, "/api/v1/reinvestments", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "R$ 3,50")

	rec = s.do(http.MethodGet, "/api/v1/liquidity?date=2027-01-17", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	liq := decode[map[string]any](t, rec)
	assert.Equal(t, float64(100000), liq["liquidCapital"])

	rec = s.do(http.MethodGet, "/api/v1/liquidity?date=bad", &clientID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/investments", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Investment](t, rec), 2)
}

func TestSignupAndVerification(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/v1/signup", nil, map[string]any{"name": "", "email": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/signup", nil, map[string]any{"name": "Dora", "email": "dora@exemplo.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decode[struct {
		User  model.UserProfile `json:"user"`
		Token string            `json:"token"`
	}](t, rec)
	assert.Equal(t, model.RoleClient, out.User.Role)
	who, err := ParseToken(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, who.ID)

	rec = s.do(http.MethodPost, "/api/v1/admin/users/"+out.User.ID+"/verification", &adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.UserProfile](t, rec).IsVerified)

	rec = s.do(http.MethodPost, "/api/v1/admin/users/ghost/verification", &adminID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/admin/users", &adminID, nil)
	assert.Len(t, decode[[]model.UserProfile](t, rec), 4)
}

func TestHistoryAndStatement(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/v1/admin/history", &adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/admin/history?limit=0", &adminID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/contributions", &clientID, map[string]any{"amount": "300"}).Code)
	rec = s.do(http.MethodGet, "/api/v1/statement.xlsx", &clientID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Transacoes")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
