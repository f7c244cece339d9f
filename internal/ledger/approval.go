package ledger

import (
	"fmt"

	"FundDesk/internal/model"
)

const (
	suffixApproved = " - Aprovado"
	suffixRejected = " - Rejeitado (Estornado)"
)

// Approve completes a pending redemption. The held amount stays debited.
func (e *Engine) Approve(s model.SystemState, txID string) (model.SystemState, model.Transaction, error) {
	idx, err := pendingIndex(s, txID)
	if err != nil {
		return s, model.Transaction{}, err
	}

	next := s.Clone()
	tx := &next.Transactions[idx]
	tx.Status = model.StatusCompleted
	tx.Description += suffixApproved
	if tx.Hold != nil {
		tx.Hold.State = model.HoldReleased
	}
	return next, *tx, nil
}

// Reject refuses a pending redemption and refunds the held amount to the
// pool it was taken from.
func (e *Engine) Reject(s model.SystemState, txID string) (model.SystemState, model.Transaction, error) {
	idx, err := pendingIndex(s, txID)
	if err != nil {
		return s, model.Transaction{}, err
	}

	next := s.Clone()
	tx := &next.Transactions[idx]
	tx.Status = model.StatusRejected
	tx.Description += suffixRejected

	if h := tx.Hold; h != nil && h.State == model.HoldHeld {
		switch h.Pool {
		case model.PoolCapital:
			next.BalanceCapital += h.Amount
		case model.PoolResult:
			next.BalanceResults += h.Amount
		default:
			return s, model.Transaction{}, fmt.Errorf("transaction %s: unknown hold pool %q", txID, h.Pool)
		}
		h.State = model.HoldRefunded
	}
	return next, *tx, nil
}

func pendingIndex(s model.SystemState, txID string) (int, error) {
	idx := s.FindTransaction(txID)
	if idx < 0 {
		return -1, ErrTransactionNotFound
	}
	if s.Transactions[idx].Status != model.StatusAnalysis {
		return -1, ErrNotPending
	}
	return idx, nil
}
