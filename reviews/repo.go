package reviews

import (
	"context"

	"homedish/models"
	"homedish/utils"
)

type Patch struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type Repo interface {
	// Insert fails with Conflict when the author already reviewed the meal.
	Insert(ctx context.Context, rv *models.Review) error
	FindByID(ctx context.Context, id string) (*models.Review, error)
	ListByMeal(ctx context.Context, mealID string, p utils.Page) ([]models.Review, int64, error)
	ListByAuthor(ctx context.Context, email string, p utils.Page) ([]models.ReviewWithMeal, int64, error)
	// UpdateOwned and DeleteOwned match only reviews written by email.
	UpdateOwned(ctx context.Context, id, email string, p Patch) (*models.Review, error)
	DeleteOwned(ctx context.Context, id, email string) (*models.Review, error)
	// Stats returns the average rating and count for a meal.
	Stats(ctx context.Context, mealID string) (float64, int64, error)
}

type MealFinder interface {
	FindByID(ctx context.Context, id string) (*models.Meal, error)
}

// RatingSink stores a meal's recomputed rating.
type RatingSink interface {
	SetRating(ctx context.Context, id string, rating float64, count int64) error
}

type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}
