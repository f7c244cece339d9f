package notifier

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

var refDay = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func TestFormatRedemptionRequested(t *testing.T) {
	t.Parallel()

	msg := FormatRedemptionRequested(model.Transaction{
		ID: "tx-9", Amount: money.FromReais(1500), ClientName: "Ana <VIP>",
		Description: "Resgate de Capital - Agendado para 19/10/2026",
	})
	assert.Contains(t, msg, "R$ 1.500,00")
	assert.Contains(t, msg, "Ana &lt;VIP&gt;")
	assert.Contains(t, msg, "/aprovar tx-9")
	assert.Contains(t, msg, "/rejeitar tx-9")
}

func TestFormatDecision(t *testing.T) {
	t.Parallel()

	tx := model.Transaction{ID: "tx-1", Amount: money.FromReais(50), ClientName: "Ana"}
	tx.Status = model.StatusCompleted
	assert.Contains(t, FormatDecision(tx), "aprovado")
	tx.Status = model.StatusRejected
	assert.Contains(t, FormatDecision(tx), "estornado")
}

func TestFormatDistribution(t *testing.T) {
	t.Parallel()

	s := model.SystemState{BalanceResults: 450, CurrentVirtualDate: refDay.AddDate(0, 0, 1)}
	credited := ledger.Distribution{
		Percentage: decimal.RequireFromString("0.45"), Capital: money.FromReais(1000),
		Result: 450, ReferenceDate: refDay, Transaction: &model.Transaction{},
	}
	msg := FormatDistribution(credited, s, true)
	assert.Contains(t, msg, "ref. 19/10/2026")
	assert.Contains(t, msg, "automático")
	assert.Contains(t, msg, "0,45%")
	assert.Contains(t, msg, "Distribuído: R$ 4,50")
	assert.Contains(t, msg, "Próxima data: 20/10/2026")

	loss := credited
	loss.Transaction = nil
	assert.Contains(t, FormatDistribution(loss, s, false), "Sem distribuição")
}

func TestFormatPendingReminder(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatPendingReminder(nil))
	msg := FormatPendingReminder([]model.Transaction{
		{ID: "a", Amount: 100}, {ID: "b", Amount: 200, ClientName: "Bia"},
	})
	assert.Contains(t, msg, "2 pendente(s)")
	assert.Contains(t, msg, "<code>b</code> Bia R$ 2,00")
}

func TestFormatFundStatus(t *testing.T) {
	t.Parallel()

	snap := ledger.NewSnapshot(model.SystemState{
		BalanceCapital: money.FromReais(1234), CurrentVirtualDate: refDay,
		Transactions: []model.Transaction{{Status: model.StatusAnalysis}},
	})
	msg := FormatFundStatus(snap)
	assert.Contains(t, msg, "Capital: R$ 1.234,00")
	assert.Contains(t, msg, "Pendências: 1")
	assert.Contains(t, msg, "19/10/2026")
}
