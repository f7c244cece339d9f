// Package ledger holds the state transitions of the simulated fund. Engine
// methods take a state value and return a new one; they never touch storage.
// Manager wraps them with load and save through a store.Store.
package ledger

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/id"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

const (
	// DefaultLockupDays is how long a contribution stays locked.
	DefaultLockupDays = 90

	descContribution = "Aporte via PIX"
	descReinvestment = "Reinvestimento de rendimentos"
)

var (
	// DefaultAutoMin and DefaultAutoMax bound the automatic daily percentage.
	DefaultAutoMin = decimal.RequireFromString("-0.10")
	DefaultAutoMax = decimal.RequireFromString("0.80")
)

// Engine applies business rules to a SystemState.
type Engine struct {
	LockupDays int
	AutoMin    decimal.Decimal
	AutoMax    decimal.Decimal

	NewID           func() string
	NewUserID       func() string
	NewReferralCode func() string
	// Rand returns a value in [0, 1) used by the automatic distribution.
	Rand func() float64
}

// NewEngine returns an Engine with production id and random sources.
func NewEngine() *Engine {
	return &Engine{
		LockupDays:      DefaultLockupDays,
		AutoMin:         DefaultAutoMin,
		AutoMax:         DefaultAutoMax,
		NewID:           id.New,
		NewUserID:       id.NewUserID,
		NewReferralCode: id.NewReferralCode,
		Rand:            rand.Float64,
	}
}

// NewState returns a fresh ledger whose virtual calendar starts on today.
func (e *Engine) NewState(today time.Time) model.SystemState {
	return e.Migrate(model.SystemState{}, today)
}

// Migrate back-fills fields that older saved states lack. A missing virtual
// date starts at today; missing rosters get the demo data; pending
// redemptions saved without a hold get one derived from their type.
func (e *Engine) Migrate(s model.SystemState, today time.Time) model.SystemState {
	next := s.Clone()
	if next.CurrentVirtualDate.IsZero() {
		next.CurrentVirtualDate = model.DateOnly(today)
	} else {
		next.CurrentVirtualDate = model.DateOnly(next.CurrentVirtualDate)
	}
	if next.Users == nil {
		next.Users = demoUsers(next.CurrentVirtualDate)
	}
	if next.Referrals == nil {
		next.Referrals = demoReferrals(next.CurrentVirtualDate)
	}
	if next.Investments == nil {
		next.Investments = []model.Investment{}
	}
	if next.Transactions == nil {
		next.Transactions = []model.Transaction{}
	}
	for i := range next.Transactions {
		tx := &next.Transactions[i]
		if tx.Hold != nil || tx.Status != model.StatusAnalysis {
			continue
		}
		switch tx.Type {
		case model.TxRedemptionCapital:
			tx.Hold = &model.Hold{Pool: model.PoolCapital, Amount: tx.Amount, State: model.HoldHeld}
		case model.TxRedemptionResult:
			tx.Hold = &model.Hold{Pool: model.PoolResult, Amount: tx.Amount, State: model.HoldHeld}
		}
	}
	return next
}

// Contribute records a deposit: a new locked investment plus a completed
// CONTRIBUTION transaction. The caller enforces minimums; balances that would
// pass money.MaxAmount are refused with ErrAmountTooLarge.
func (e *Engine) Contribute(s model.SystemState, amount money.Cents, who model.Identity) (model.SystemState, error) {
	capital, total, err := credit(s, amount)
	if err != nil {
		return s, err
	}

	next := s.Clone()
	today := next.CurrentVirtualDate

	next.Investments = prepend(next.Investments, e.newInvestment(amount, today))
	next.Transactions = prepend(next.Transactions, model.Transaction{
		ID:          e.NewID(),
		Type:        model.TxContribution,
		Amount:      amount,
		Date:        today,
		Status:      model.StatusCompleted,
		Description: descContribution,
		ClientID:    who.ID,
		ClientName:  who.Name,
	})
	next.BalanceCapital = capital
	next.TotalContributed = total
	return next, nil
}

// Reinvest moves the whole results balance into a new locked investment.
func (e *Engine) Reinvest(s model.SystemState, who model.Identity) (model.SystemState, money.Cents, error) {
	amount := s.BalanceResults
	if amount <= 0 {
		return s, 0, ErrNoResults
	}
	capital, total, err := credit(s, amount)
	if err != nil {
		return s, 0, err
	}

	next := s.Clone()
	today := next.CurrentVirtualDate
	next.BalanceResults = 0
	next.Investments = prepend(next.Investments, e.newInvestment(amount, today))
	next.BalanceCapital = capital
	next.TotalContributed = total
	next.Transactions = prepend(next.Transactions, model.Transaction{
		ID:          e.NewID(),
		Type:        model.TxReinvestment,
		Amount:      amount,
		Date:        today,
		Status:      model.StatusCompleted,
		Description: descReinvestment,
		ClientID:    who.ID,
		ClientName:  who.Name,
	})
	return next, amount, nil
}

// credit returns the capital and contributed totals after adding amount.
func credit(s model.SystemState, amount money.Cents) (capital, total money.Cents, err error) {
	if capital, err = money.Add(s.BalanceCapital, amount); err != nil {
		return 0, 0, ErrAmountTooLarge
	}
	if total, err = money.Add(s.TotalContributed, amount); err != nil {
		return 0, 0, ErrAmountTooLarge
	}
	return capital, total, nil
}

func (e *Engine) newInvestment(amount money.Cents, start time.Time) model.Investment {
	return model.Investment{
		ID:         e.NewID(),
		Amount:     amount,
		StartDate:  start,
		LockupDate: e.lockupDate(start),
		Status:     model.InvestmentActive,
	}
}

func (e *Engine) lockupDate(start time.Time) time.Time {
	days := e.LockupDays
	if days <= 0 {
		days = DefaultLockupDays
	}
	return start.AddDate(0, 0, days)
}

func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}
