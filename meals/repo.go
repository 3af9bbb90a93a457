package meals

import (
	"context"

	"homedish/models"
	"homedish/utils"
)

// Filter narrows a catalog listing. Zero values mean no constraint.
type Filter struct {
	Search   string
	ChefID   string
	MinPrice *float64
	MaxPrice *float64
	Sort     string // price, rating, createdAt
	Asc      bool
}

// Patch holds the editable fields of a meal; nil fields are left alone.
type Patch struct {
	Name           *string   `json:"name"`
	Image          *string   `json:"image"`
	Price          *float64  `json:"price"`
	Ingredients    *[]string `json:"ingredients"`
	DeliveryTime   *string   `json:"estimatedDeliveryTime"`
	ChefExperience *string   `json:"chefExperience"`
}

type Repo interface {
	Insert(ctx context.Context, m *models.Meal) error
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	List(ctx context.Context, f Filter, p utils.Page) ([]models.Meal, int64, error)
	// UpdateOwned applies p only when the meal belongs to chefID. It returns
	// nil, nil when nothing matched.
	UpdateOwned(ctx context.Context, id, chefID string, p Patch) (*models.Meal, error)
	// DeleteOwned reports whether a meal owned by chefID was removed.
	DeleteOwned(ctx context.Context, id, chefID string) (bool, error)
	SetRating(ctx context.Context, id string, rating float64, count int64) error
}
