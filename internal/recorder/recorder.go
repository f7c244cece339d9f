package recorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/money"
)

// Event types written to the ledger history.
const (
	EventContribution       = "CONTRIBUTION"
	EventRedemptionRequest  = "REDEMPTION_REQUESTED"
	EventRedemptionApproved = "REDEMPTION_APPROVED"
	EventRedemptionRejected = "REDEMPTION_REJECTED"
	EventPerformance        = "PERFORMANCE"
	EventReinvestment       = "REINVESTMENT"
	EventUserCreated        = "USER_CREATED"
	EventVerification       = "KYC_TOGGLED"
)

// LedgerEvent records one balance-affecting (or roster) operation.
type LedgerEvent struct {
	ID            int64       `json:"id"`
	RecordedAt    time.Time   `json:"recordedAt"`
	EventType     string      `json:"eventType"`
	VirtualDate   time.Time   `json:"virtualDate"`
	TransactionID string      `json:"transactionId,omitempty"`
	ClientID      string      `json:"clientId,omitempty"`
	Amount        money.Cents `json:"amount"`
	CapitalBefore money.Cents `json:"capitalBefore"`
	CapitalAfter  money.Cents `json:"capitalAfter"`
	ResultsBefore money.Cents `json:"resultsBefore"`
	ResultsAfter  money.Cents `json:"resultsAfter"`
	Note          string      `json:"note,omitempty"`
}

// PerformanceEvent records one processed business day.
type PerformanceEvent struct {
	ReferenceDate time.Time
	Percentage    decimal.Decimal
	Capital       money.Cents
	Result        money.Cents
	Automatic     bool
}

// Recorder persists history for auditing and charts.
type Recorder interface {
	RecordLedgerEvent(ctx context.Context, evt *LedgerEvent) error
	RecordPerformance(ctx context.Context, evt *PerformanceEvent) error
	ListEvents(ctx context.Context, limit int) ([]LedgerEvent, error)
	Close() error
}
