package notifier

import (
	"fmt"
	"html"
	"strings"

	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

func clientLabel(tx model.Transaction) string {
	if tx.ClientName == "" {
		return "cliente"
	}
	return html.EscapeString(tx.ClientName)
}

// FormatRedemptionRequested alerts operators about a new redemption waiting
// for analysis.
func FormatRedemptionRequested(tx model.Transaction) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Novo resgate em análise</b>\n\n")
	b.WriteString(fmt.Sprintf("Cliente: %s\n", clientLabel(tx)))
	b.WriteString(fmt.Sprintf("Valor: %s\n", tx.Amount.Format()))
	b.WriteString(fmt.Sprintf("Tipo: %s\n", html.EscapeString(tx.Description)))
	b.WriteString(fmt.Sprintf("ID: <code>%s</code>\n\n", tx.ID))
	b.WriteString(fmt.Sprintf("/aprovar %s\n/rejeitar %s", tx.ID, tx.ID))
	return b.String()
}

// FormatDecision reports the outcome of an approval or rejection.
func FormatDecision(tx model.Transaction) string {
	switch tx.Status {
	case model.StatusCompleted, model.StatusApproved:
		return fmt.Sprintf("✅ Resgate de %s (%s) aprovado.", tx.Amount.Format(), clientLabel(tx))
	case model.StatusRejected:
		return fmt.Sprintf("↩️ Resgate de %s (%s) rejeitado e estornado.", tx.Amount.Format(), clientLabel(tx))
	default:
		return fmt.Sprintf("Transação %s: %s", tx.ID, tx.Status)
	}
}

// FormatDistribution formats the daily performance report.
func FormatDistribution(d ledger.Distribution, s model.SystemState, automatic bool) string {
	var b strings.Builder
	mode := "manual"
	if automatic {
		mode = "automático"
	}
	b.WriteString(fmt.Sprintf("📈 <b>Rendimento diário</b> | ref. %s (%s)\n\n", model.FormatDate(d.ReferenceDate), mode))
	b.WriteString(fmt.Sprintf("Percentual: %s\n", money.FormatPercent(d.Percentage)))
	b.WriteString(fmt.Sprintf("Capital base: %s\n", d.Capital.Format()))
	if d.Distributed() {
		b.WriteString(fmt.Sprintf("Distribuído: %s\n", d.Result.Format()))
	} else {
		b.WriteString("Sem distribuição (resultado não positivo)\n")
	}
	b.WriteString(fmt.Sprintf("Saldo de rendimentos: %s\n", s.BalanceResults.Format()))
	b.WriteString(fmt.Sprintf("Próxima data: %s", model.FormatDate(s.CurrentVirtualDate)))
	return b.String()
}

// FormatPendingReminder lists transactions waiting for approval. It returns
// an empty string when there is nothing pending.
func FormatPendingReminder(pending []model.Transaction) string {
	if len(pending) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏳ <b>%d pendente(s) de aprovação</b>\n\n", len(pending)))
	for _, tx := range pending {
		b.WriteString(fmt.Sprintf("• <code>%s</code> %s %s\n", tx.ID, clientLabel(tx), tx.Amount.Format()))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFundStatus formats the current desk state for display.
func FormatFundStatus(snap ledger.Snapshot) string {
	var b strings.Builder
	b.WriteString("📦 <b>Situação do fundo</b>\n\n")
	b.WriteString(fmt.Sprintf("Data virtual: %s\n", model.FormatDate(snap.CurrentVirtualDate)))
	b.WriteString(fmt.Sprintf("Capital: %s\n", snap.BalanceCapital.Format()))
	b.WriteString(fmt.Sprintf("Capital líquido: %s\n", snap.LiquidCapital.Format()))
	b.WriteString(fmt.Sprintf("Rendimentos: %s\n", snap.BalanceResults.Format()))
	b.WriteString(fmt.Sprintf("Total aportado: %s\n", snap.TotalContributed.Format()))
	b.WriteString(fmt.Sprintf("Total resgatado: %s\n", snap.TotalRedeemed.Format()))
	b.WriteString(fmt.Sprintf("Último rendimento: %s\n", money.FormatPercent(snap.LastPerformanceFactor)))
	b.WriteString(fmt.Sprintf("Pendências: %d", snap.PendingApprovals))
	return b.String()
}
