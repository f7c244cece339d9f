package model

import (
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/money"
)

// TransactionType classifies a ledger movement.
type TransactionType string

const (
	TxContribution       TransactionType = "CONTRIBUTION"
	TxRedemptionCapital  TransactionType = "REDEMPTION_CAPITAL"
	TxRedemptionResult   TransactionType = "REDEMPTION_RESULT"
	TxResultDistribution TransactionType = "RESULT_DISTRIBUTION"
	TxReferralCredit     TransactionType = "REFERRAL_CREDIT"
	TxReinvestment       TransactionType = "REINVESTMENT"
)

// TransactionStatus is the approval state of a transaction.
// ANALYSIS is the only non-terminal status.
type TransactionStatus string

const (
	StatusAnalysis  TransactionStatus = "ANALYSIS"
	StatusApproved  TransactionStatus = "APPROVED"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusRejected  TransactionStatus = "REJECTED"
)

// Pool names the balance a redemption draws from.
type Pool string

const (
	PoolCapital Pool = "CAPITAL"
	PoolResult  Pool = "RESULT"
)

// TransactionType returns the redemption transaction type for the pool.
func (p Pool) TransactionType() (TransactionType, bool) {
	switch p {
	case PoolCapital:
		return TxRedemptionCapital, true
	case PoolResult:
		return TxRedemptionResult, true
	}
	return "", false
}

// HoldState tracks the funds debited by a redemption request.
type HoldState string

const (
	HoldHeld     HoldState = "HELD"
	HoldReleased HoldState = "RELEASED"
	HoldRefunded HoldState = "REFUNDED"
)

// Hold is the amount taken out of a pool when a redemption is requested.
// It is released on approval or refunded to the pool on rejection.
type Hold struct {
	Pool   Pool        `json:"pool"`
	Amount money.Cents `json:"amount"`
	State  HoldState   `json:"state"`
}

// Transaction is one entry of the statement, newest first in SystemState.
type Transaction struct {
	ID                string            `json:"id"`
	Type              TransactionType   `json:"type"`
	Amount            money.Cents       `json:"amount"`
	Date              time.Time         `json:"date"`
	Status            TransactionStatus `json:"status"`
	Description       string            `json:"description"`
	ClientID          string            `json:"clientId,omitempty"`
	ClientName        string            `json:"clientName,omitempty"`
	PerformanceFactor *decimal.Decimal  `json:"performanceFactor,omitempty"`
	ScheduledDate     *time.Time        `json:"scheduledDate,omitempty"`
	Hold              *Hold             `json:"hold,omitempty"`
}

func (tx Transaction) clone() Transaction {
	out := tx
	if tx.PerformanceFactor != nil {
		f := *tx.PerformanceFactor
		out.PerformanceFactor = &f
	}
	if tx.ScheduledDate != nil {
		d := *tx.ScheduledDate
		out.ScheduledDate = &d
	}
	if tx.Hold != nil {
		h := *tx.Hold
		out.Hold = &h
	}
	return out
}
