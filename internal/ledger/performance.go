package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

// Distribution describes one processed business day.
type Distribution struct {
	Percentage    decimal.Decimal `json:"percentage"`
	Capital       money.Cents     `json:"capital"`
	Result        money.Cents     `json:"result"`
	ReferenceDate time.Time       `json:"referenceDate"`
	// Transaction is nil when the result was zero or negative.
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

// Distributed reports whether a result was credited.
func (d Distribution) Distributed() bool { return d.Transaction != nil }

// ProcessManualPerformance applies pct percent of the capital balance as the
// day's result. The virtual date always moves forward one day; a non-positive
// result leaves balances and transactions alone. A result that would push the
// results balance past money.MaxAmount fails with ErrAmountTooLarge and the
// day is not processed.
func (e *Engine) ProcessManualPerformance(s model.SystemState, pct decimal.Decimal) (model.SystemState, Distribution, error) {
	result, err := s.BalanceCapital.Percent(pct)
	if err != nil {
		return s, Distribution{}, ErrAmountTooLarge
	}
	results := s.BalanceResults
	if result > 0 {
		if results, err = money.Add(results, result); err != nil {
			return s, Distribution{}, ErrAmountTooLarge
		}
	}

	next := s.Clone()
	ref := next.CurrentVirtualDate

	dist := Distribution{
		Percentage:    pct,
		Capital:       next.BalanceCapital,
		Result:        result,
		ReferenceDate: ref,
	}

	next.CurrentVirtualDate = ref.AddDate(0, 0, 1)
	next.LastPerformanceFactor = pct

	if result <= 0 {
		return next, dist, nil
	}

	factor := pct
	tx := model.Transaction{
		ID:                e.NewID(),
		Type:              model.TxResultDistribution,
		Amount:            result,
		Date:              ref,
		Status:            model.StatusCompleted,
		Description:       fmt.Sprintf("Rendimento diário %s - ref. %s", money.FormatPercent(pct), model.FormatDate(ref)),
		PerformanceFactor: &factor,
	}
	next.Transactions = prepend(next.Transactions, tx)
	next.BalanceResults = results
	dist.Transaction = &tx
	return next, dist, nil
}

// ProcessPerformanceDistribution runs the day with a random percentage
// between AutoMin and AutoMax, rounded to two decimals.
func (e *Engine) ProcessPerformanceDistribution(s model.SystemState) (model.SystemState, Distribution, error) {
	return e.ProcessManualPerformance(s, e.RandomPercentage())
}

// RandomPercentage draws the automatic daily percentage.
func (e *Engine) RandomPercentage() decimal.Decimal {
	lo, hi := e.AutoMin, e.AutoMax
	if hi.LessThan(lo) {
		lo, hi = hi, lo
	}
	span := hi.Sub(lo)
	pct := lo.Add(span.Mul(decimal.NewFromFloat(e.Rand()))).Round(2)
	if pct.GreaterThan(hi) {
		pct = hi
	}
	return pct
}
