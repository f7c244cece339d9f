package model

import (
	"time"

	"FundDesk/internal/money"
)

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentActive InvestmentStatus = "ACTIVE"
	// InvestmentLiquidated is part of the persisted format but no operation sets it yet.
	InvestmentLiquidated InvestmentStatus = "LIQUIDATED"
)

// Investment is a lockup-bound tranche of capital.
type Investment struct {
	ID         string           `json:"id"`
	Amount     money.Cents      `json:"amount"`
	StartDate  time.Time        `json:"startDate"`
	LockupDate time.Time        `json:"lockupDate"`
	Status     InvestmentStatus `json:"status"`
}

// LiquidAt reports whether the investment's principal can be redeemed on day.
func (i Investment) LiquidAt(day time.Time) bool {
	return i.Status == InvestmentActive && !i.LockupDate.After(DateOnly(day))
}
