package reviews

import (
	"context"
	"sync"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type fakeRepo struct {
	mu      sync.Mutex
	reviews map[string]*models.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: make(map[string]*models.Review)}
}

func (f *fakeRepo) Insert(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.reviews {
		if o.MealID == rv.MealID && o.AuthorEmail == rv.AuthorEmail {
			return apperr.Conflict("you have already reviewed this meal")
		}
	}
	cp := *rv
	f.reviews[rv.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review not found")
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeRepo) ListByMeal(_ context.Context, mealID string, _ utils.Page) ([]models.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, rv := range f.reviews {
		if rv.MealID == mealID {
			out = append(out, *rv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListByAuthor(_ context.Context, email string, _ utils.Page) ([]models.ReviewWithMeal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReviewWithMeal
	for _, rv := range f.reviews {
		if rv.AuthorEmail == email {
			out = append(out, models.ReviewWithMeal{Review: *rv, MealName: testMeals[rv.MealID].Name})
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) UpdateOwned(_ context.Context, id, email string, p Patch) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok || rv.AuthorEmail != email {
		return nil, nil
	}
	if p.Rating != nil {
		rv.Rating = *p.Rating
	}
	if p.Comment != nil {
		rv.Comment = *p.Comment
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeRepo) DeleteOwned(_ context.Context, id, email string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok || rv.AuthorEmail != email {
		return nil, nil
	}
	delete(f.reviews, id)
	return rv, nil
}

func (f *fakeRepo) Stats(_ context.Context, mealID string) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, n int
	for _, rv := range f.reviews {
		if rv.MealID == mealID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), int64(n), nil
}

type fakeMeals map[string]*models.Meal

func (m fakeMeals) FindByID(_ context.Context, id string) (*models.Meal, error) {
	if meal, ok := m[id]; ok {
		return meal, nil
	}
	return nil, apperr.NotFound("meal not found")
}

func (m fakeMeals) SetRating(_ context.Context, id string, rating float64, count int64) error {
	if meal, ok := m[id]; ok {
		meal.Rating, meal.ReviewCount = rating, count
	}
	return nil
}

type fakeAccounts map[string]*models.Account

func (a fakeAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if acc, ok := a[email]; ok {
		return acc, nil
	}
	return nil, apperr.NotFound("account not found")
}

var testMeals = fakeMeals{}

func newTestService() (*Service, *fakeRepo) {
	for k := range testMeals {
		delete(testMeals, k)
	}
	testMeals["meal-1"] = &models.Meal{ID: "meal-1", Name: "Rajma"}
	accounts := fakeAccounts{
		"a@x.io": {Email: "a@x.io", Name: "Asha", Image: "https://img/a.png"},
		"b@x.io": {Email: "b@x.io", Name: "Bo"},
	}
	repo := newFakeRepo()
	return NewService(repo, testMeals, testMeals, accounts), repo
}
