package accounts

import (
	"context"
	"sync"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

// fakeRepo is an in-memory Repo honouring the conditional-update contract.
type fakeRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account

	TransitionFunc func(ctx context.Context, email string, cond Condition, upd Update) (*models.Account, error)
}

func newFakeRepo(accounts ...*models.Account) *fakeRepo {
	f := &fakeRepo{accounts: make(map[string]*models.Account)}
	for _, a := range accounts {
		f.accounts[a.Email] = a
	}
	return f
}

func (f *fakeRepo) Insert(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[a.Email]; ok {
		return apperr.Conflict("account already exists")
	}
	cp := *a
	f.accounts[a.Email] = &cp
	return nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ChefIDExists(_ context.Context, chefID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ChefID == chefID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Transition(ctx context.Context, email string, cond Condition, upd Update) (*models.Account, error) {
	if f.TransitionFunc != nil {
		return f.TransitionFunc(ctx, email, cond, upd)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	if (cond.Role != "" && a.Role != cond.Role) ||
		(cond.NotRole != "" && a.Role == cond.NotRole) ||
		(cond.Status != "" && a.Status != cond.Status) ||
		(cond.NotStatus != "" && a.Status == cond.NotStatus) {
		return nil, nil
	}
	if upd.ChefID != "" {
		for _, other := range f.accounts {
			if other.ChefID == upd.ChefID {
				return nil, apperr.Conflict("chef id already assigned")
			}
		}
		a.ChefID = upd.ChefID
	}
	if upd.Role != "" {
		a.Role = upd.Role
	}
	if upd.Status != "" {
		a.Status = upd.Status
	}
	if upd.ChefRequestedAt != nil {
		a.ChefRequestedAt = upd.ChefRequestedAt
	}
	if upd.ChefApprovedAt != nil {
		a.ChefApprovedAt = upd.ChefApprovedAt
	}
	if upd.AdminRequestedAt != nil {
		a.AdminRequestedAt = upd.AdminRequestedAt
	}
	if upd.AdminApprovedAt != nil {
		a.AdminApprovedAt = upd.AdminApprovedAt
	}
	if upd.ClearChefRequest {
		a.ChefRequestedAt = nil
	}
	if upd.ClearAdminRequest {
		a.AdminRequestedAt = nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, email string, upd ProfileUpdate) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok {
		return nil, apperr.NotFound("account not found")
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Image != nil {
		a.Image = *upd.Image
	}
	if upd.Address != nil {
		a.Address = *upd.Address
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, lf ListFilter, _ utils.Page) ([]models.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.accounts {
		if lf.Status != "" && a.Status != lf.Status {
			continue
		}
		if len(lf.Roles) > 0 {
			match := false
			for _, r := range lf.Roles {
				match = match || a.Role == r
			}
			if !match {
				continue
			}
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func account(email string, role models.Role) *models.Account {
	return &models.Account{ID: email, UID: "uid-" + email, Email: email, Name: email, Role: role, Status: models.StatusActive}
}

var pageOne = utils.Page{Page: 1, Limit: 10}
