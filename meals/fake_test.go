package meals

import (
	"context"
	"sort"
	"strings"
	"sync"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

type fakeRepo struct {
	mu    sync.Mutex
	meals map[string]*models.Meal
}

func newFakeRepo(meals ...*models.Meal) *fakeRepo {
	f := &fakeRepo{meals: make(map[string]*models.Meal)}
	for _, m := range meals {
		f.meals[m.ID] = m
	}
	return f
}

func (f *fakeRepo) Insert(_ context.Context, m *models.Meal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.meals[m.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meals[id]
	if !ok {
		return nil, apperr.NotFound("meal not found")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, flt Filter, p utils.Page) ([]models.Meal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Meal
	for _, m := range f.meals {
		if flt.Search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(flt.Search)) {
			continue
		}
		if flt.ChefID != "" && m.ChefID != flt.ChefID {
			continue
		}
		if flt.MinPrice != nil && m.Price < *flt.MinPrice {
			continue
		}
		if flt.MaxPrice != nil && m.Price > *flt.MaxPrice {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	total := int64(len(out))
	start := int(p.Skip())
	if start > len(out) {
		start = len(out)
	}
	end := start + p.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeRepo) UpdateOwned(_ context.Context, id, chefID string, p Patch) (*models.Meal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meals[id]
	if !ok || m.ChefID != chefID {
		return nil, nil
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	if p.Ingredients != nil {
		m.Ingredients = *p.Ingredients
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) DeleteOwned(_ context.Context, id, chefID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meals[id]
	if !ok || m.ChefID != chefID {
		return false, nil
	}
	delete(f.meals, id)
	return true, nil
}

func (f *fakeRepo) SetRating(_ context.Context, id string, rating float64, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.meals[id]; ok {
		m.Rating, m.ReviewCount = rating, count
	}
	return nil
}

func meal(id, chefID string, price float64) *models.Meal {
	return &models.Meal{ID: id, Name: "Meal " + id, Price: price, ChefID: chefID, ChefEmail: chefID + "@x.io"}
}
