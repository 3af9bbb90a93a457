package meals

import (
	"context"
	"log"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateRequest struct {
	Name           string   `json:"name"`
	Image          string   `json:"image"`
	Price          float64  `json:"price"`
	Ingredients    []string `json:"ingredients"`
	DeliveryTime   string   `json:"estimatedDeliveryTime"`
	ChefExperience string   `json:"chefExperience"`
}

// Create lists a new meal owned by chef.
func (s *Service) Create(ctx context.Context, chef *models.Account, req CreateRequest) (*models.Meal, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if req.Price <= 0 {
		return nil, apperr.Validation("price must be positive")
	}

	now := s.now()
	m := &models.Meal{
		ID:             utils.GetUUID(),
		Name:           name,
		Image:          strings.TrimSpace(req.Image),
		Price:          utils.RoundCents(req.Price),
		Ingredients:    utils.CleanList(req.Ingredients),
		DeliveryTime:   strings.TrimSpace(req.DeliveryTime),
		ChefExperience: strings.TrimSpace(req.ChefExperience),
		ChefID:         chef.ChefID,
		ChefEmail:      chef.Email,
		ChefName:       chef.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	log.Printf("CreateMeal: %s listed %s", chef.ChefID, m.ID)
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Meal, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, p utils.Page) ([]models.Meal, int64, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, 0, apperr.Validation("minPrice exceeds maxPrice")
	}
	return s.repo.List(ctx, f, p)
}

// Update edits a meal the chef owns.
func (s *Service) Update(ctx context.Context, chefID, id string, p Patch) (*models.Meal, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		p.Name = &name
	}
	if p.Price != nil {
		if *p.Price <= 0 {
			return nil, apperr.Validation("price must be positive")
		}
		price := utils.RoundCents(*p.Price)
		p.Price = &price
	}
	if p.Ingredients != nil {
		cleaned := utils.CleanList(*p.Ingredients)
		p.Ingredients = &cleaned
	}

	m, err := s.repo.UpdateOwned(ctx, id, chefID, p)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	return nil, s.ownershipError(ctx, id)
}

func (s *Service) Delete(ctx context.Context, chefID, id string) error {
	ok, err := s.repo.DeleteOwned(ctx, id, chefID)
	if err != nil {
		return err
	}
	if ok {
		log.Printf("DeleteMeal: %s removed %s", chefID, id)
		return nil
	}
	return s.ownershipError(ctx, id)
}

// SetRating stores an aggregate recomputed from the meal's reviews.
func (s *Service) SetRating(ctx context.Context, id string, rating float64, count int64) error {
	return s.repo.SetRating(ctx, id, rating, count)
}

func (s *Service) ownershipError(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return apperr.Forbidden("meal belongs to another chef")
}
