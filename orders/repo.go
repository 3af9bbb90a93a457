package orders

import (
	"context"
	"time"

	"homedish/models"
	"homedish/utils"
)

// Condition is the state an order must be in for a transition to apply.
// Zero fields are unconstrained.
type Condition struct {
	Status    models.OrderStatus
	Unpaid    bool
	Paid      bool
	ChefID    string
	ChefEmail string
	UserEmail string
}

type Update struct {
	Status        models.OrderStatus
	Payment       models.PaymentStatus
	TransactionID string
	AcceptedAt    *time.Time
	CancelledAt   *time.Time
	PaidAt        *time.Time
	DeliveredAt   *time.Time
}

type Repo interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// Transition applies upd in one atomic update when the order satisfies
	// cond. It returns nil, nil when nothing matched.
	Transition(ctx context.Context, id string, cond Condition, upd Update) (*models.Order, error)
	ListByUser(ctx context.Context, email string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error)
	ListByChef(ctx context.Context, chefID string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error)
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
}

// MealFinder resolves the meal an order is placed for.
type MealFinder interface {
	FindByID(ctx context.Context, id string) (*models.Meal, error)
}

// AccountFinder lets admins view any order.
type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}
