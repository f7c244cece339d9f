package ledger

import (
	"time"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

// LiquidCapital sums the active investments whose lockup has ended by at.
func LiquidCapital(s model.SystemState, at time.Time) money.Cents {
	var total money.Cents
	for _, inv := range s.Investments {
		if inv.LiquidAt(at) {
			total += inv.Amount
		}
	}
	return total
}

// Pending returns the transactions waiting for approval, newest first.
func Pending(s model.SystemState) []model.Transaction {
	out := []model.Transaction{}
	for _, tx := range s.Transactions {
		if tx.Status == model.StatusAnalysis {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionsFor returns the transactions of one client. Distributions have
// no client and are included for everyone.
func TransactionsFor(s model.SystemState, clientID string) []model.Transaction {
	out := []model.Transaction{}
	for _, tx := range s.Transactions {
		if tx.ClientID == "" || tx.ClientID == clientID {
			out = append(out, tx)
		}
	}
	return out
}

// Snapshot is the state plus the values derived from it.
type Snapshot struct {
	model.SystemState
	PendingApprovals int         `json:"pendingApprovals"`
	LiquidCapital    money.Cents `json:"liquidCapital"`
}

// NewSnapshot derives a Snapshot from s.
func NewSnapshot(s model.SystemState) Snapshot {
	return Snapshot{
		SystemState:      s,
		PendingApprovals: s.PendingApprovals(),
		LiquidCapital:    LiquidCapital(s, s.CurrentVirtualDate),
	}
}
