package pay

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/orders"
	"homedish/utils"
)

const (
	intentTTL = 30 * time.Minute
	lockTTL   = 10 * time.Second
)

// OrderBook is the part of the order lifecycle the bridge drives.
type OrderBook interface {
	Lookup(ctx context.Context, id string) (*models.Order, error)
	MarkPaid(ctx context.Context, id, payerEmail, transactionID string) (*models.Order, error)
}

// Bridge creates provider intents for orders and reconciles payment status
// once the provider confirms a charge.
type Bridge struct {
	orders   OrderBook
	provider Provider
	ledger   Ledger
	cache    IntentCache
	currency string
	now      func() time.Time
}

func NewBridge(book OrderBook, provider Provider, ledger Ledger, cache IntentCache, currency string) *Bridge {
	if cache == nil {
		cache = NopCache{}
	}
	return &Bridge{
		orders:   book,
		provider: provider,
		ledger:   ledger,
		cache:    cache,
		currency: strings.ToLower(currency),
		now:      time.Now,
	}
}

// AmountMinor converts a total to minor currency units.
func AmountMinor(total float64) int64 {
	return int64(math.Round(total * 100))
}

// CreateIntent returns a client secret for paying orderID. Repeated calls
// within the cache window return the same intent.
func (b *Bridge) CreateIntent(ctx context.Context, orderID, payerEmail string) (*CachedIntent, error) {
	payerEmail = utils.NormalizeEmail(payerEmail)
	o, err := b.payableOrder(ctx, orderID, payerEmail)
	if err != nil {
		return nil, err
	}
	amount := AmountMinor(o.TotalPrice)

	if ci := b.cached(ctx, o.ID, amount); ci != nil {
		return ci, nil
	}

	ok, err := b.cache.Lock(ctx, o.ID, lockTTL)
	if err != nil {
		return nil, apperr.Dependency("failed to lock order for payment", err)
	}
	if !ok {
		return nil, apperr.Conflict("payment already in progress for this order")
	}
	defer b.cache.Unlock(ctx, o.ID)

	if ci := b.cached(ctx, o.ID, amount); ci != nil {
		return ci, nil
	}

	intent, err := b.provider.CreateIntent(ctx, IntentRequest{
		Amount:   amount,
		Currency: b.currency,
		Metadata: map[string]string{
			"orderId": o.ID,
			"email":   payerEmail,
		},
		IdempotencyKey: fmt.Sprintf("order-%s-%d", o.ID, amount),
	})
	if err != nil {
		return nil, apperr.Dependency("failed to create payment intent", err)
	}

	ci := CachedIntent{IntentID: intent.ID, ClientSecret: intent.ClientSecret, Amount: amount, Currency: b.currency}
	if err := b.cache.Put(ctx, o.ID, ci, intentTTL); err != nil {
		log.Printf("CreateIntent: cache put failed for order %s, err=%v", o.ID, err)
	}
	log.Printf("CreateIntent: %s for order %s (%d %s)", intent.ID, o.ID, amount, b.currency)
	return &ci, nil
}

func (b *Bridge) cached(ctx context.Context, orderID string, amount int64) *CachedIntent {
	ci, err := b.cache.Get(ctx, orderID)
	if err != nil {
		log.Printf("CreateIntent: cache read failed for order %s, err=%v", orderID, err)
		return nil
	}
	if ci == nil || ci.Amount != amount {
		return nil
	}
	return ci
}

type RecordRequest struct {
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
}

// RecordPayment marks the order paid after the provider confirms the charge
// and appends a ledger entry. The entry is written only by the call that
// performed the transition.
func (b *Bridge) RecordPayment(ctx context.Context, payerEmail string, req RecordRequest) (*models.Order, *models.Payment, error) {
	payerEmail = utils.NormalizeEmail(payerEmail)
	o, err := b.verifiedPayment(ctx, req.OrderID, payerEmail, req.TransactionID)
	if err != nil {
		return nil, nil, err
	}

	paid, err := b.orders.MarkPaid(ctx, o.ID, payerEmail, req.TransactionID)
	if err != nil {
		return nil, nil, err
	}
	b.cache.Forget(ctx, o.ID)

	entry := b.entry(paid, payerEmail, "client")
	if err := b.ledger.Append(ctx, entry); err != nil {
		// The order document is authoritative; the ledger is informational.
		log.Printf("RecordPayment: ledger append failed for order %s, err=%v", o.ID, err)
		return paid, nil, nil
	}
	log.Printf("RecordPayment: order %s paid by %s (%s)", o.ID, payerEmail, req.TransactionID)
	return paid, entry, nil
}

// MarkPaid is the direct payment-status path. It verifies like RecordPayment
// but writes no ledger entry.
func (b *Bridge) MarkPaid(ctx context.Context, orderID, payerEmail, intentID string) (*models.Order, error) {
	payerEmail = utils.NormalizeEmail(payerEmail)
	o, err := b.verifiedPayment(ctx, orderID, payerEmail, intentID)
	if err != nil {
		return nil, err
	}
	paid, err := b.orders.MarkPaid(ctx, o.ID, payerEmail, intentID)
	if err != nil {
		return nil, err
	}
	b.cache.Forget(ctx, o.ID)
	return paid, nil
}

// HandleWebhook applies a signed provider event. Replays for an order that
// is already paid are acknowledged without a second ledger entry.
func (b *Bridge) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := b.provider.VerifyEvent(payload, signature)
	if err != nil {
		return apperr.Validation("invalid webhook signature")
	}
	if ev.Type != EventIntentSucceeded || ev.Intent == nil {
		return nil
	}

	intent := ev.Intent
	orderID := intent.Metadata["orderId"]
	if orderID == "" {
		log.Printf("HandleWebhook: event %s has no orderId", ev.ID)
		return nil
	}
	o, err := b.orders.Lookup(ctx, orderID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			log.Printf("HandleWebhook: event %s references unknown order %s", ev.ID, orderID)
			return nil
		}
		return err
	}
	if o.Paid() {
		log.Printf("HandleWebhook: order %s already paid, event %s acknowledged", o.ID, ev.ID)
		return nil
	}
	if intent.Amount != AmountMinor(o.TotalPrice) {
		log.Printf("HandleWebhook: amount %d does not match order %s", intent.Amount, o.ID)
		return nil
	}

	paid, err := b.orders.MarkPaid(ctx, o.ID, "", intent.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidState) {
			log.Printf("HandleWebhook: order %s not payable: %v", o.ID, err)
			return nil
		}
		return err
	}
	b.cache.Forget(ctx, o.ID)

	email := utils.NormalizeEmail(intent.Metadata["email"])
	if email == "" {
		email = paid.UserEmail
	}
	if err := b.ledger.Append(ctx, b.entry(paid, email, "webhook")); err != nil {
		log.Printf("HandleWebhook: ledger append failed for order %s, err=%v", o.ID, err)
	}
	log.Printf("HandleWebhook: order %s paid via %s", o.ID, intent.ID)
	return nil
}

func (b *Bridge) ListPayments(ctx context.Context, email string, p utils.Page) ([]models.Payment, int64, error) {
	return b.ledger.ListByEmail(ctx, utils.NormalizeEmail(email), p)
}

func (b *Bridge) payableOrder(ctx context.Context, orderID, payerEmail string) (*models.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.Validation("orderId is required")
	}
	o, err := b.orders.Lookup(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := orders.Payable(o, payerEmail); err != nil {
		return nil, err
	}
	return o, nil
}

// verifiedPayment checks that intentID succeeded, belongs to the order and
// charged its total.
func (b *Bridge) verifiedPayment(ctx context.Context, orderID, payerEmail, intentID string) (*models.Order, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, apperr.Validation("transactionId is required")
	}
	o, err := b.payableOrder(ctx, orderID, payerEmail)
	if err != nil {
		return nil, err
	}

	intent, err := b.provider.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperr.Dependency("failed to verify payment", err)
	}
	if intent.Metadata["orderId"] != o.ID {
		return nil, apperr.Validation("payment does not belong to this order")
	}
	if intent.Amount != AmountMinor(o.TotalPrice) {
		return nil, apperr.Validation("payment amount does not match order total")
	}
	if !intent.Succeeded() {
		return nil, apperr.InvalidState("payment has not succeeded")
	}
	return o, nil
}

func (b *Bridge) entry(o *models.Order, email, source string) *models.Payment {
	return &models.Payment{
		ID:            utils.GetUUID(),
		Email:         email,
		OrderID:       o.ID,
		TransactionID: o.TransactionID,
		Amount:        o.TotalPrice,
		Currency:      b.currency,
		Source:        source,
		CreatedAt:     b.now(),
	}
}
