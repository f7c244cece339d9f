package ledger

import (
	"fmt"
	"time"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

// RedemptionRequest asks to withdraw from one of the pools.
type RedemptionRequest struct {
	Amount money.Cents
	Pool   model.Pool
	// ScheduledDate is optional; the zero value means the current virtual day.
	ScheduledDate time.Time
	Requester     model.Identity
}

// RequestRedemption validates the request, debits the pool right away and
// queues an ANALYSIS transaction holding the debited amount. On error the
// input state is returned untouched.
func (e *Engine) RequestRedemption(s model.SystemState, req RedemptionRequest) (model.SystemState, string, error) {
	today := s.CurrentVirtualDate
	requestDate := today
	if !req.ScheduledDate.IsZero() {
		requestDate = model.DateOnly(req.ScheduledDate)
		if requestDate.Before(today) {
			return s, "", ErrRetroactiveDate
		}
	}

	txType, ok := req.Pool.TransactionType()
	if !ok {
		return s, "", ErrInvalidPool
	}

	switch req.Pool {
	case model.PoolResult:
		if req.Amount > s.BalanceResults {
			return s, "", ErrInsufficientResults
		}
	case model.PoolCapital:
		if req.Amount > s.BalanceCapital {
			return s, "", ErrInsufficientCapital
		}
		if liquid := LiquidCapital(s, requestDate); req.Amount > liquid {
			return s, "", &LockupError{Requested: req.Amount, Liquid: liquid, At: requestDate}
		}
	}

	next := s.Clone()
	switch req.Pool {
	case model.PoolResult:
		next.BalanceResults -= req.Amount
	case model.PoolCapital:
		next.BalanceCapital -= req.Amount
	}
	next.TotalRedeemed += req.Amount

	scheduled := requestDate
	next.Transactions = prepend(next.Transactions, model.Transaction{
		ID:            e.NewID(),
		Type:          txType,
		Amount:        req.Amount,
		Date:          today,
		Status:        model.StatusAnalysis,
		Description:   fmt.Sprintf("%s - Agendado para %s", redemptionLabel(req.Pool), model.FormatDate(requestDate)),
		ClientID:      req.Requester.ID,
		ClientName:    req.Requester.Name,
		ScheduledDate: &scheduled,
		Hold:          &model.Hold{Pool: req.Pool, Amount: req.Amount, State: model.HoldHeld},
	})

	msg := fmt.Sprintf("Solicitação de resgate de %s enviada para análise. Agendado para %s.",
		req.Amount.Format(), model.FormatDate(requestDate))
	return next, msg, nil
}

func redemptionLabel(p model.Pool) string {
	if p == model.PoolCapital {
		return "Resgate de Capital"
	}
	return "Resgate de Rendimentos"
}
