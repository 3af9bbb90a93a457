package orders

import (
	"context"
	"sync"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeRepo(orders ...*models.Order) *fakeRepo {
	f := &fakeRepo{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeRepo) Insert(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) Transition(_ context.Context, id string, cond Condition, upd Update) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	if (cond.Status != "" && o.OrderStatus != cond.Status) ||
		(cond.Unpaid && o.Paid()) ||
		(cond.Paid && !o.Paid()) ||
		(cond.ChefID != "" && o.ChefID != cond.ChefID) ||
		(cond.ChefEmail != "" && o.ChefEmail != cond.ChefEmail) ||
		(cond.UserEmail != "" && o.UserEmail != cond.UserEmail) {
		return nil, nil
	}
	if upd.Status != "" {
		o.OrderStatus = upd.Status
	}
	if upd.Payment != "" {
		o.PaymentStatus = upd.Payment
	}
	if upd.TransactionID != "" {
		o.TransactionID = upd.TransactionID
	}
	if upd.AcceptedAt != nil {
		o.AcceptedAt = upd.AcceptedAt
	}
	if upd.CancelledAt != nil {
		o.CancelledAt = upd.CancelledAt
	}
	if upd.PaidAt != nil {
		o.PaidAt = upd.PaidAt
	}
	if upd.DeliveredAt != nil {
		o.DeliveredAt = upd.DeliveredAt
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, email string, status models.OrderStatus, _ utils.Page) ([]models.Order, int64, error) {
	return f.filter(func(o *models.Order) bool {
		return o.UserEmail == email && (status == "" || o.OrderStatus == status)
	})
}

func (f *fakeRepo) ListByChef(_ context.Context, chefID string, status models.OrderStatus, _ utils.Page) ([]models.Order, int64, error) {
	return f.filter(func(o *models.Order) bool {
		return o.ChefID == chefID && (status == "" || o.OrderStatus == status)
	})
}

func (f *fakeRepo) filter(keep func(*models.Order) bool) ([]models.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CountByStatus(_ context.Context) (map[models.OrderStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[models.OrderStatus]int64{}
	for _, o := range f.orders {
		out[o.OrderStatus]++
	}
	return out, nil
}

type fakeMeals map[string]*models.Meal

func (m fakeMeals) FindByID(_ context.Context, id string) (*models.Meal, error) {
	if meal, ok := m[id]; ok {
		return meal, nil
	}
	return nil, apperr.NotFound("meal not found")
}

type fakeAccounts map[string]*models.Account

func (a fakeAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if acc, ok := a[email]; ok {
		return acc, nil
	}
	return nil, apperr.NotFound("account not found")
}

var testMeals = fakeMeals{
	"meal-1": {ID: "meal-1", Name: "Khichdi", Price: 10, ChefID: "chef-1000", ChefEmail: "chef@x.io"},
}

func newTestService(orders ...*models.Order) (*Service, *fakeRepo) {
	repo := newFakeRepo(orders...)
	accounts := fakeAccounts{
		"admin@x.io":   {Email: "admin@x.io", Role: models.RoleAdmin},
		"eater@x.io":   {Email: "eater@x.io", Role: models.RoleUser},
		"hopeful@x.io": {Email: "hopeful@x.io", Role: models.RoleChefPending},
		"chef@x.io":    {Email: "chef@x.io", Role: models.RoleChef, ChefID: "chef-1000"},
		"cook@x.io":    {Email: "cook@x.io", Role: models.RoleChef, ChefID: "chef-2000"},
	}
	return NewService(repo, testMeals, accounts), repo
}

func pendingOrder(id string) *models.Order {
	return &models.Order{
		ID:            id,
		FoodID:        "meal-1",
		ChefID:        "chef-1000",
		ChefEmail:     "chef@x.io",
		UserEmail:     "eater@x.io",
		Price:         10,
		Quantity:      1,
		TotalPrice:    10,
		OrderStatus:   models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}
}
