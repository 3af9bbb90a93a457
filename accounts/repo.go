package accounts

import (
	"context"
	"time"

	"homedish/models"
	"homedish/utils"
)

// Condition restricts a transition to accounts in the expected state.
// Zero fields are not checked.
type Condition struct {
	Role      models.Role
	NotRole   models.Role
	Status    models.Status
	NotStatus models.Status
}

// Update is applied atomically when the Condition matches.
type Update struct {
	Role   models.Role
	Status models.Status
	ChefID string

	ChefRequestedAt  *time.Time
	ChefApprovedAt   *time.Time
	AdminRequestedAt *time.Time
	AdminApprovedAt  *time.Time

	ClearChefRequest  bool
	ClearAdminRequest bool
}

type ProfileUpdate struct {
	Name    *string
	Image   *string
	Address *string
}

type ListFilter struct {
	Roles  []models.Role
	Status models.Status
}

type Repo interface {
	ChefIDChecker
	Insert(ctx context.Context, a *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// Transition applies upd to the account when cond holds and returns the
	// updated account, or nil when nothing matched.
	Transition(ctx context.Context, email string, cond Condition, upd Update) (*models.Account, error)
	UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (*models.Account, error)
	List(ctx context.Context, f ListFilter, p utils.Page) ([]models.Account, int64, error)
}
