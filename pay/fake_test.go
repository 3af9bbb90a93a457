package pay

import (
	"context"
	"errors"
	"sync"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/orders"
	"homedish/utils"
)

type fakeBook struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeBook(os ...*models.Order) *fakeBook {
	b := &fakeBook{orders: make(map[string]*models.Order)}
	for _, o := range os {
		b.orders[o.ID] = o
	}
	return b
}

func (b *fakeBook) Lookup(_ context.Context, id string) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (b *fakeBook) MarkPaid(_ context.Context, id, payerEmail, txID string) (*models.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	if err := orders.Payable(o, payerEmail); err != nil {
		return nil, err
	}
	now := time.Now()
	o.PaymentStatus = models.PaymentPaid
	o.PaidAt = &now
	o.TransactionID = txID
	cp := *o
	return &cp, nil
}

type fakeProvider struct {
	mu      sync.Mutex
	intents map[string]*Intent
	created int
	event   *Event
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]*Intent)}
}

func (p *fakeProvider) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	id := "pi_" + req.Metadata["orderId"]
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       "requires_payment_method",
		Metadata:     req.Metadata,
	}
	p.intents[id] = in
	return in, nil
}

func (p *fakeProvider) GetIntent(_ context.Context, id string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in, ok := p.intents[id]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	cp := *in
	return &cp, nil
}

func (p *fakeProvider) VerifyEvent(_ []byte, signature string) (*Event, error) {
	if signature != "valid" {
		return nil, errors.New("signature mismatch")
	}
	return p.event, nil
}

func (p *fakeProvider) succeed(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents[id].Status = "succeeded"
}

type fakeLedger struct {
	mu      sync.Mutex
	entries []models.Payment
}

func (l *fakeLedger) Append(_ context.Context, p *models.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *p)
	return nil
}

func (l *fakeLedger) ListByEmail(_ context.Context, email string, _ utils.Page) ([]models.Payment, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Payment
	for _, p := range l.entries {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type memCache struct {
	mu      sync.Mutex
	locks   map[string]bool
	intents map[string]CachedIntent
}

func newMemCache() *memCache {
	return &memCache{locks: map[string]bool{}, intents: map[string]CachedIntent{}}
}

func (c *memCache) Lock(_ context.Context, id string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[id] {
		return false, nil
	}
	c.locks[id] = true
	return true, nil
}

func (c *memCache) Unlock(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, id)
}

func (c *memCache) Get(_ context.Context, id string) (*CachedIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ci, ok := c.intents[id]
	if !ok {
		return nil, nil
	}
	return &ci, nil
}

func (c *memCache) Put(_ context.Context, id string, ci CachedIntent, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents[id] = ci
	return nil
}

func (c *memCache) Forget(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.intents, id)
}

func acceptedOrder(id string, total float64) *models.Order {
	return &models.Order{
		ID:            id,
		ChefEmail:     "chef@x.io",
		UserEmail:     "eater@x.io",
		TotalPrice:    total,
		OrderStatus:   models.OrderAccepted,
		PaymentStatus: models.PaymentPending,
	}
}

type bridgeFixture struct {
	bridge   *Bridge
	book     *fakeBook
	provider *fakeProvider
	ledger   *fakeLedger
	cache    *memCache
}

func newFixture(os ...*models.Order) *bridgeFixture {
	f := &bridgeFixture{
		book:     newFakeBook(os...),
		provider: newFakeProvider(),
		ledger:   &fakeLedger{},
		cache:    newMemCache(),
	}
	f.bridge = NewBridge(f.book, f.provider, f.ledger, f.cache, "USD")
	return f
}
