package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/money"
)

// SystemState is the whole simulated ledger. It is persisted as one blob and
// replaced on every write.
type SystemState struct {
	BalanceCapital        money.Cents     `json:"balanceCapital"`
	BalanceResults        money.Cents     `json:"balanceResults"`
	TotalContributed      money.Cents     `json:"totalContributed"`
	TotalRedeemed         money.Cents     `json:"totalRedeemed"`
	LastPerformanceFactor decimal.Decimal `json:"lastPerformanceFactor"`
	CurrentVirtualDate    time.Time       `json:"currentVirtualDate"`
	Investments           []Investment    `json:"investments"`
	Transactions          []Transaction   `json:"transactions"`
	Users                 []UserProfile   `json:"users"`
	Referrals             []Referral      `json:"referrals"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// PendingApprovals counts transactions waiting for an admin decision.
func (s *SystemState) PendingApprovals() int {
	n := 0
	for _, tx := range s.Transactions {
		if tx.Status == StatusAnalysis {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s SystemState) Clone() SystemState {
	out := s
	out.Investments = slices.Clone(s.Investments)
	out.Users = slices.Clone(s.Users)
	out.Referrals = slices.Clone(s.Referrals)
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		for i, tx := range s.Transactions {
			out.Transactions[i] = tx.clone()
		}
	}
	return out
}

// FindTransaction returns the index of the transaction with the given id, or -1.
func (s *SystemState) FindTransaction(id string) int {
	return slices.IndexFunc(s.Transactions, func(tx Transaction) bool { return tx.ID == id })
}

// FindUser returns the index of the user with the given id, or -1.
func (s *SystemState) FindUser(id string) int {
	return slices.IndexFunc(s.Users, func(u UserProfile) bool { return u.ID == id })
}

// DateOnly drops the clock part of t, keeping its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date the way the dashboard shows it (dd/mm/yyyy).
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
