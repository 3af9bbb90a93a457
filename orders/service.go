package orders

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type Service struct {
	repo     Repo
	meals    MealFinder
	accounts AccountFinder
	now      func() time.Time
}

func NewService(repo Repo, meals MealFinder, accounts AccountFinder) *Service {
	return &Service{repo: repo, meals: meals, accounts: accounts, now: time.Now}
}

type CreateRequest struct {
	FoodID      string   `json:"foodId"`
	Quantity    int      `json:"quantity"`
	UserEmail   string   `json:"userEmail"`
	UserName    string   `json:"userName"`
	UserAddress string   `json:"userAddress"`
	Price       *float64 `json:"price,omitempty"`
}

// Create places a pending order for the caller. The price always comes from
// the stored meal.
func (s *Service) Create(ctx context.Context, callerEmail string, req CreateRequest) (*models.Order, error) {
	foodID := strings.TrimSpace(req.FoodID)
	userEmail := utils.NormalizeEmail(req.UserEmail)
	if foodID == "" || userEmail == "" {
		return nil, apperr.Validation("foodId and userEmail are required")
	}
	if req.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	if userEmail != utils.NormalizeEmail(callerEmail) {
		return nil, apperr.Forbidden("cannot place an order for another user")
	}

	meal, err := s.meals.FindByID(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCustomer(ctx, userEmail, meal); err != nil {
		return nil, err
	}
	if req.Price != nil && utils.RoundCents(*req.Price) != meal.Price {
		log.Printf("CreateOrder: ignoring client price %.2f for meal %s (stored %.2f)", *req.Price, meal.ID, meal.Price)
	}

	o := &models.Order{
		ID:            utils.GetUUID(),
		FoodID:        meal.ID,
		MealName:      meal.Name,
		ChefID:        meal.ChefID,
		ChefEmail:     meal.ChefEmail,
		UserEmail:     userEmail,
		UserName:      strings.TrimSpace(req.UserName),
		UserAddress:   strings.TrimSpace(req.UserAddress),
		Price:         meal.Price,
		Quantity:      req.Quantity,
		TotalPrice:    utils.RoundCents(meal.Price * float64(req.Quantity)),
		OrderStatus:   models.OrderPending,
		PaymentStatus: models.PaymentPending,
		OrderTime:     s.now(),
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, err
	}
	log.Printf("CreateOrder: %s ordered %d x %s", userEmail, o.Quantity, meal.ID)
	return o, nil
}

// requireCustomer admits users and pending applicants. Chefs and admins
// cannot order, and nobody orders a meal they cook.
func (s *Service) requireCustomer(ctx context.Context, email string, meal *models.Meal) error {
	if meal.ChefEmail == email {
		return apperr.Forbidden("cannot order your own meal")
	}
	if s.accounts == nil {
		return nil
	}
	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if a.Role == models.RoleChef || a.Role == models.RoleAdmin {
		return apperr.Forbidden("only customers can place orders")
	}
	return nil
}

// Get returns the order to its customer, its chef, or an admin.
func (s *Service) Get(ctx context.Context, id, viewerEmail string) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	viewerEmail = utils.NormalizeEmail(viewerEmail)
	if viewerEmail != "" && (o.UserEmail == viewerEmail || o.ChefEmail == viewerEmail) {
		return o, nil
	}
	if s.accounts != nil && viewerEmail != "" {
		a, err := s.accounts.FindByEmail(ctx, viewerEmail)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		if a != nil && a.Role == models.RoleAdmin {
			return o, nil
		}
	}
	return nil, apperr.Forbidden("not allowed to view this order")
}

// Lookup loads an order without a viewer check, for trusted callers.
func (s *Service) Lookup(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListForCustomer(ctx context.Context, email string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Validation("unknown order status")
	}
	return s.repo.ListByUser(ctx, utils.NormalizeEmail(email), status, p)
}

func (s *Service) ListForChef(ctx context.Context, chefID string, status models.OrderStatus, p utils.Page) ([]models.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperr.Validation("unknown order status")
	}
	return s.repo.ListByChef(ctx, chefID, status, p)
}

// Accept moves a pending order owned by chefID to accepted.
func (s *Service) Accept(ctx context.Context, chefID, id string) (*models.Order, error) {
	now := s.now()
	o, err := s.repo.Transition(ctx, id,
		Condition{Status: models.OrderPending, ChefID: chefID},
		Update{Status: models.OrderAccepted, AcceptedAt: &now})
	if err != nil || o != nil {
		return o, err
	}
	return nil, s.classify(ctx, id, func(cur *models.Order) error {
		if cur.ChefID != chefID {
			return apperr.Forbidden("order belongs to another chef")
		}
		return wrongStatus(cur, models.OrderPending)
	})
}

// Cancel moves a pending order owned by chefID to cancelled.
func (s *Service) Cancel(ctx context.Context, chefID, id string) (*models.Order, error) {
	now := s.now()
	o, err := s.repo.Transition(ctx, id,
		Condition{Status: models.OrderPending, ChefID: chefID},
		Update{Status: models.OrderCancelled, CancelledAt: &now})
	if err != nil || o != nil {
		return o, err
	}
	return nil, s.classify(ctx, id, func(cur *models.Order) error {
		if cur.ChefID != chefID {
			return apperr.Forbidden("order belongs to another chef")
		}
		return wrongStatus(cur, models.OrderPending)
	})
}

// Deliver completes an accepted, paid order. Ownership is checked against the
// chef email recorded on the order.
func (s *Service) Deliver(ctx context.Context, chefEmail, id string) (*models.Order, error) {
	chefEmail = utils.NormalizeEmail(chefEmail)
	now := s.now()
	o, err := s.repo.Transition(ctx, id,
		Condition{Status: models.OrderAccepted, Paid: true, ChefEmail: chefEmail},
		Update{Status: models.OrderDelivered, DeliveredAt: &now})
	if err != nil || o != nil {
		return o, err
	}
	return nil, s.classify(ctx, id, func(cur *models.Order) error {
		if cur.ChefEmail != chefEmail {
			return apperr.Forbidden("order belongs to another chef")
		}
		if cur.OrderStatus != models.OrderAccepted {
			return wrongStatus(cur, models.OrderAccepted)
		}
		return apperr.InvalidState("order has not been paid")
	})
}

// MarkPaid records payment for an accepted, unpaid order. An empty payerEmail
// skips the ownership condition; only verified provider events do that.
func (s *Service) MarkPaid(ctx context.Context, id, payerEmail, transactionID string) (*models.Order, error) {
	payerEmail = utils.NormalizeEmail(payerEmail)
	now := s.now()
	o, err := s.repo.Transition(ctx, id,
		Condition{Status: models.OrderAccepted, Unpaid: true, UserEmail: payerEmail},
		Update{Payment: models.PaymentPaid, PaidAt: &now, TransactionID: transactionID})
	if err != nil || o != nil {
		return o, err
	}
	return nil, s.classify(ctx, id, func(cur *models.Order) error {
		return Payable(cur, payerEmail)
	})
}

// Summary counts orders per status, with every status present.
func (s *Service) Summary(ctx context.Context) (map[models.OrderStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range []models.OrderStatus{models.OrderPending, models.OrderAccepted, models.OrderCancelled, models.OrderDelivered} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

// Payable reports why payerEmail cannot pay for o, or nil when it can.
func Payable(o *models.Order, payerEmail string) error {
	if payerEmail != "" && o.UserEmail != payerEmail {
		return apperr.Forbidden("order belongs to another user")
	}
	if o.Paid() {
		return apperr.InvalidState("order is already paid")
	}
	if o.OrderStatus != models.OrderAccepted {
		return wrongStatus(o, models.OrderAccepted)
	}
	return nil
}

// classify re-reads an order after a conditional update matched nothing.
func (s *Service) classify(ctx context.Context, id string, why func(*models.Order) error) error {
	cur, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := why(cur); err != nil {
		return err
	}
	return apperr.InvalidState("order changed concurrently")
}

func wrongStatus(o *models.Order, want models.OrderStatus) error {
	return apperr.InvalidState(fmt.Sprintf("order is %s, expected %s", o.OrderStatus, want))
}
