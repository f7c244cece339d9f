// Package desk is the application service in front of the ledger. It applies
// input limits, then records, publishes and announces every change.
package desk

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"FundDesk/internal/events"
	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/notifier"
	"FundDesk/internal/recorder"
)

const notifyTimeout = 30 * time.Second

// DefaultMaxPercent bounds manual daily percentages when Options leaves it unset.
var DefaultMaxPercent = decimal.NewFromInt(100)

// BelowMinimumError reports a contribution under the configured minimum.
// errors.Is(err, ledger.ErrInvalidAmount) holds.
type BelowMinimumError struct {
	Min money.Cents
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("O aporte mínimo é de %s.", e.Min.Format())
}

func (e *BelowMinimumError) Unwrap() error { return ledger.ErrInvalidAmount }

// Options configures the side channels of a Desk. Nil fields get no-op
// implementations.
type Options struct {
	MinContribution money.Cents
	// MaxPercent is the largest magnitude accepted by DistributeManual.
	MaxPercent      decimal.Decimal
	Recorder        recorder.Recorder
	Publisher       events.Publisher
	Notifier        notifier.Notifier
}

// Desk runs ledger operations and fans their effects out.
type Desk struct {
	mgr    *ledger.Manager
	min    money.Cents
	maxPct decimal.Decimal
	rec    recorder.Recorder
	pub    events.Publisher
	notify notifier.Notifier
	wg     sync.WaitGroup
}

// New creates a Desk around mgr.
func New(mgr *ledger.Manager, opts Options) *Desk {
	d := &Desk{
		mgr:    mgr,
		min:    opts.MinContribution,
		maxPct: opts.MaxPercent,
		rec:    opts.Recorder,
		pub:    opts.Publisher,
		notify: opts.Notifier,
	}
	if !d.maxPct.IsPositive() {
		d.maxPct = DefaultMaxPercent
	}
	if d.rec == nil {
		d.rec = recorder.NewNoopRecorder()
	}
	if d.pub == nil {
		d.pub = events.FallbackPublisher{}
	}
	if d.notify == nil {
		d.notify = notifier.NoopNotifier{}
	}
	return d
}

// MinContribution returns the smallest accepted deposit.
func (d *Desk) MinContribution() money.Cents { return d.min }

// MaxPercent returns the largest manual daily percentage magnitude.
func (d *Desk) MaxPercent() decimal.Decimal { return d.maxPct }

// Wait blocks until queued notifications are delivered.
func (d *Desk) Wait() { d.wg.Wait() }

// Snapshot returns the current state with its derived values.
func (d *Desk) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return ledger.NewSnapshot(s), nil
}

// Transactions returns the history visible to who. Admins see everything.
func (d *Desk) Transactions(ctx context.Context, who model.Identity) ([]model.Transaction, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return nil, err
	}
	if who.IsAdmin() {
		return s.Transactions, nil
	}
	return ledger.TransactionsFor(s, who.ID), nil
}

// Investments returns every contribution tranche.
func (d *Desk) Investments(ctx context.Context) ([]model.Investment, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return nil, err
	}
	return s.Investments, nil
}

// Liquidity returns the capital out of lockup on at. The zero time means the
// current virtual date.
func (d *Desk) Liquidity(ctx context.Context, at time.Time) (money.Cents, time.Time, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	if at.IsZero() {
		at = s.CurrentVirtualDate
	}
	at = model.DateOnly(at)
	return ledger.LiquidCapital(s, at), at, nil
}

// Pending returns the transactions waiting for approval.
func (d *Desk) Pending(ctx context.Context) ([]model.Transaction, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Pending(s), nil
}

// Users returns the roster.
func (d *Desk) Users(ctx context.Context) ([]model.UserProfile, error) {
	s, err := d.mgr.State(ctx)
	if err != nil {
		return nil, err
	}
	return s.Users, nil
}

// History returns recent recorded ledger events, newest first.
func (d *Desk) History(ctx context.Context, limit int) ([]recorder.LedgerEvent, error) {
	return d.rec.ListEvents(ctx, limit)
}

// Contribute deposits amount for who.
func (d *Desk) Contribute(ctx context.Context, who model.Identity, amount money.Cents) (model.Transaction, error) {
	if amount <= 0 {
		return model.Transaction{}, ledger.ErrInvalidAmount
	}
	if amount < d.min {
		return model.Transaction{}, &BelowMinimumError{Min: d.min}
	}
	if amount > money.MaxAmount {
		return model.Transaction{}, ledger.ErrAmountTooLarge
	}
	ch, err := d.mgr.Contribute(ctx, who, amount)
	if err != nil {
		return model.Transaction{}, err
	}
	tx := ch.After.Transactions[0]
	log.Printf("[INFO] contribution %s: %s by %s", tx.ID, amount.Format(), who.ID)

	d.record(ctx, ch, recorder.EventContribution, tx.ID, who.ID, amount, "")
	d.publish(ctx, ch.After, events.ContributionCreated, tx)
	return tx, nil
}

// RequestRedemption queues a redemption and returns it with the message for
// the requester.
func (d *Desk) RequestRedemption(ctx context.Context, req ledger.RedemptionRequest) (model.Transaction, string, error) {
	if req.Amount <= 0 {
		return model.Transaction{}, "", ledger.ErrInvalidAmount
	}
	if req.Amount > money.MaxAmount {
		return model.Transaction{}, "", ledger.ErrAmountTooLarge
	}
	ch, msg, err := d.mgr.RequestRedemption(ctx, req)
	if err != nil {
		return model.Transaction{}, "", err
	}
	tx := ch.After.Transactions[0]
	log.Printf("[INFO] redemption %s requested: %s from %s", tx.ID, req.Amount.Format(), req.Pool)

	d.record(ctx, ch, recorder.EventRedemptionRequest, tx.ID, req.Requester.ID, req.Amount, string(req.Pool))
	d.publish(ctx, ch.After, events.RedemptionRequested, tx)
	d.announce(notifier.FormatRedemptionRequested(tx))
	return tx, msg, nil
}

// Approve completes a pending redemption.
func (d *Desk) Approve(ctx context.Context, txID string) (model.Transaction, error) {
	ch, tx, err := d.mgr.Approve(ctx, txID)
	if err != nil {
		return model.Transaction{}, err
	}
	log.Printf("[INFO] transaction %s approved", tx.ID)

	d.record(ctx, ch, recorder.EventRedemptionApproved, tx.ID, tx.ClientID, tx.Amount, "")
	d.publish(ctx, ch.After, events.RedemptionApproved, tx)
	d.announce(notifier.FormatDecision(tx))
	return tx, nil
}

// Reject refuses a pending redemption and refunds it.
func (d *Desk) Reject(ctx context.Context, txID string) (model.Transaction, error) {
	ch, tx, err := d.mgr.Reject(ctx, txID)
	if err != nil {
		return model.Transaction{}, err
	}
	log.Printf("[INFO] transaction %s rejected, %s refunded", tx.ID, tx.Amount.Format())

	d.record(ctx, ch, recorder.EventRedemptionRejected, tx.ID, tx.ClientID, tx.Amount, "")
	d.publish(ctx, ch.After, events.RedemptionRejected, tx)
	d.announce(notifier.FormatDecision(tx))
	return tx, nil
}

// DistributeManual runs one business day at pct percent. |pct| must not
// exceed the configured maximum.
func (d *Desk) DistributeManual(ctx context.Context, pct decimal.Decimal) (ledger.Distribution, error) {
	if pct.Abs().GreaterThan(d.maxPct) {
		return ledger.Distribution{}, ledger.ErrInvalidPercentage
	}
	ch, dist, err := d.mgr.ProcessManualPerformance(ctx, pct)
	if err != nil {
		return ledger.Distribution{}, err
	}
	d.afterDistribution(ctx, ch, dist, false)
	return dist, nil
}

// DistributeAuto runs one business day at a random percentage.
func (d *Desk) DistributeAuto(ctx context.Context) (ledger.Distribution, error) {
	ch, dist, err := d.mgr.ProcessPerformanceDistribution(ctx)
	if err != nil {
		return ledger.Distribution{}, err
	}
	d.afterDistribution(ctx, ch, dist, true)
	return dist, nil
}

func (d *Desk) afterDistribution(ctx context.Context, ch ledger.Change, dist ledger.Distribution, automatic bool) {
	log.Printf("[INFO] performance %s on %s: %s distributed",
		money.FormatPercent(dist.Percentage), model.FormatDate(dist.ReferenceDate), dist.Result.Format())

	var txID string
	if dist.Transaction != nil {
		txID = dist.Transaction.ID
	}
	d.record(ctx, ch, recorder.EventPerformance, txID, "", dist.Result, money.FormatPercent(dist.Percentage))
	if err := d.rec.RecordPerformance(ctx, &recorder.PerformanceEvent{
		ReferenceDate: dist.ReferenceDate,
		Percentage:    dist.Percentage,
		Capital:       dist.Capital,
		Result:        dist.Result,
		Automatic:     automatic,
	}); err != nil {
		log.Printf("[WARN] record performance: %v", err)
	}
	d.publish(ctx, ch.After, events.PerformanceDistributed, distributionPayload{
		Percentage:    dist.Percentage,
		Capital:       dist.Capital,
		Result:        dist.Result,
		ReferenceDate: dist.ReferenceDate,
		Automatic:     automatic,
		Transaction:   dist.Transaction,
	})
	d.announce(notifier.FormatDistribution(dist, ch.After, automatic))
}

type distributionPayload struct {
	Percentage    decimal.Decimal    `json:"percentage"`
	Capital       money.Cents        `json:"capital"`
	Result        money.Cents        `json:"result"`
	ReferenceDate time.Time          `json:"referenceDate"`
	Automatic     bool               `json:"automatic"`
	Transaction   *model.Transaction `json:"transaction,omitempty"`
}

// Reinvest moves the whole results balance into capital.
func (d *Desk) Reinvest(ctx context.Context, who model.Identity) (money.Cents, error) {
	ch, amount, err := d.mgr.Reinvest(ctx, who)
	if err != nil {
		return 0, err
	}
	tx := ch.After.Transactions[0]
	log.Printf("[INFO] reinvested %s for %s", amount.Format(), who.ID)

	d.record(ctx, ch, recorder.EventReinvestment, tx.ID, who.ID, amount, "")
	d.publish(ctx, ch.After, events.ResultsReinvested, tx)
	return amount, nil
}

// CreateUser registers a client.
func (d *Desk) CreateUser(ctx context.Context, in ledger.NewUser) (model.UserProfile, error) {
	ch, u, err := d.mgr.CreateUser(ctx, in)
	if err != nil {
		return model.UserProfile{}, err
	}
	log.Printf("[INFO] user %s created", u.ID)

	d.record(ctx, ch, recorder.EventUserCreated, "", u.ID, 0, u.Email)
	d.publish(ctx, ch.After, events.UserCreated, u)
	return u, nil
}

// ToggleVerification flips a user's KYC flag.
func (d *Desk) ToggleVerification(ctx context.Context, userID string) (model.UserProfile, error) {
	ch, u, err := d.mgr.ToggleVerification(ctx, userID)
	if err != nil {
		return model.UserProfile{}, err
	}
	log.Printf("[INFO] user %s verified=%t", u.ID, u.IsVerified)

	d.record(ctx, ch, recorder.EventVerification, "", u.ID, 0, fmt.Sprintf("verified=%t", u.IsVerified))
	d.publish(ctx, ch.After, events.UserVerificationToggled, u)
	return u, nil
}

// record and publish failures are logged; the ledger change already stands.
func (d *Desk) record(ctx context.Context, ch ledger.Change, eventType, txID, clientID string, amount money.Cents, note string) {
	err := d.rec.RecordLedgerEvent(ctx, &recorder.LedgerEvent{
		EventType:     eventType,
		VirtualDate:   ch.Before.CurrentVirtualDate,
		TransactionID: txID,
		ClientID:      clientID,
		Amount:        amount,
		CapitalBefore: ch.Before.BalanceCapital,
		CapitalAfter:  ch.After.BalanceCapital,
		ResultsBefore: ch.Before.BalanceResults,
		ResultsAfter:  ch.After.BalanceResults,
		Note:          note,
	})
	if err != nil {
		log.Printf("[WARN] record %s: %v", eventType, err)
	}
}

func (d *Desk) publish(ctx context.Context, s model.SystemState, routingKey string, payload any) {
	if err := d.pub.Publish(ctx, routingKey, events.NewEnvelope(routingKey, s.CurrentVirtualDate, payload)); err != nil {
		log.Printf("[WARN] publish %s: %v", routingKey, err)
	}
}

// announce sends text to the operators without blocking the caller.
func (d *Desk) announce(text string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := d.notify.Notify(ctx, text); err != nil {
			log.Printf("[ERROR] notify: %v", err)
		}
	}()
}

// Announce sends an arbitrary operator message and waits for delivery.
func (d *Desk) Announce(ctx context.Context, text string) error {
	return d.notify.Notify(ctx, text)
}
