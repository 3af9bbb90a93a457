package reviews

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type Service struct {
	repo     Repo
	meals    MealFinder
	ratings  RatingSink
	accounts AccountFinder
	now      func() time.Time
}

func NewService(repo Repo, meals MealFinder, ratings RatingSink, accounts AccountFinder) *Service {
	return &Service{repo: repo, meals: meals, ratings: ratings, accounts: accounts, now: time.Now}
}

type AddRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func (s *Service) ListForMeal(ctx context.Context, mealID string, p utils.Page) ([]models.Review, int64, error) {
	if _, err := s.meals.FindByID(ctx, mealID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByMeal(ctx, mealID, p)
}

func (s *Service) ListMine(ctx context.Context, email string, p utils.Page) ([]models.ReviewWithMeal, int64, error) {
	return s.repo.ListByAuthor(ctx, utils.NormalizeEmail(email), p)
}

// Add stores a review by email for mealID. Author name and image come from
// the account.
func (s *Service) Add(ctx context.Context, email, mealID string, req AddRequest) (*models.Review, error) {
	comment := strings.TrimSpace(req.Comment)
	if !validRating(req.Rating) || comment == "" {
		return nil, apperr.Validation("rating must be 1-5 and comment is required")
	}
	if _, err := s.meals.FindByID(ctx, mealID); err != nil {
		return nil, err
	}
	author, err := s.accounts.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	now := s.now()
	rv := &models.Review{
		ID:          utils.GetUUID(),
		MealID:      mealID,
		Rating:      req.Rating,
		Comment:     comment,
		AuthorEmail: author.Email,
		AuthorName:  author.Name,
		AuthorImage: author.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, rv); err != nil {
		return nil, err
	}
	s.refreshRating(ctx, mealID)
	return rv, nil
}

// Edit changes a review written by email.
func (s *Service) Edit(ctx context.Context, email, id string, p Patch) (*models.Review, error) {
	if p.Rating != nil && !validRating(*p.Rating) {
		return nil, apperr.Validation("rating must be 1-5")
	}
	if p.Comment != nil {
		c := strings.TrimSpace(*p.Comment)
		if c == "" {
			return nil, apperr.Validation("comment cannot be empty")
		}
		p.Comment = &c
	}

	rv, err := s.repo.UpdateOwned(ctx, id, utils.NormalizeEmail(email), p)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, s.ownershipError(ctx, id)
	}
	if p.Rating != nil {
		s.refreshRating(ctx, rv.MealID)
	}
	return rv, nil
}

func (s *Service) Delete(ctx context.Context, email, id string) error {
	rv, err := s.repo.DeleteOwned(ctx, id, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if rv == nil {
		return s.ownershipError(ctx, id)
	}
	s.refreshRating(ctx, rv.MealID)
	return nil
}

func (s *Service) ownershipError(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return apperr.Forbidden("review belongs to another user")
}

// refreshRating recomputes the meal aggregate. Failures are logged; the
// review itself is already stored.
func (s *Service) refreshRating(ctx context.Context, mealID string) {
	avg, count, err := s.repo.Stats(ctx, mealID)
	if err == nil {
		err = s.ratings.SetRating(ctx, mealID, math.Round(avg*10)/10, count)
	}
	if err != nil {
		log.Printf("refreshRating: meal %s: %v", mealID, err)
	}
}
