package accounts

import (
	"context"
	"log"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"
)

const approveAttempts = 3

type Service struct {
	repo  Repo
	chefs *ChefIDAllocator
	now   func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, chefs: NewChefIDAllocator(repo), now: time.Now}
}

type RegisterRequest struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Address string `json:"address"`
}

// Register creates an account with role user and status active.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	email := utils.NormalizeEmail(req.Email)
	uid := strings.TrimSpace(req.UID)
	name := strings.TrimSpace(req.Name)
	if email == "" || uid == "" || name == "" {
		return nil, apperr.Validation("uid, email and name are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email")
	}

	now := s.now()
	a := &models.Account{
		ID:        utils.GetUUID(),
		UID:       uid,
		Email:     email,
		Name:      name,
		Image:     strings.TrimSpace(req.Image),
		Address:   strings.TrimSpace(req.Address),
		Role:      models.RoleUser,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}
	log.Printf("Register: created account %s", email)
	return a, nil
}

// Authenticate returns the account when uid matches the one stored for email.
func (s *Service) Authenticate(ctx context.Context, uid, email string) (*models.Account, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || uid == "" {
		return nil, apperr.Validation("uid and email are required")
	}
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("unknown account")
		}
		return nil, err
	}
	if a.UID != uid {
		return nil, apperr.Unauthorized("identity mismatch")
	}
	return a, nil
}

func (s *Service) Profile(ctx context.Context, email string) (*models.Account, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (*models.Account, error) {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		upd.Name = &name
	}
	return s.repo.UpdateProfile(ctx, email, upd)
}

func (s *Service) RequestChef(ctx context.Context, email string) (*models.Account, error) {
	now := s.now()
	return s.apply(ctx, email, EventRequestChef, Update{ChefRequestedAt: &now})
}

func (s *Service) RequestAdmin(ctx context.Context, email string) (*models.Account, error) {
	now := s.now()
	return s.apply(ctx, email, EventRequestAdmin, Update{AdminRequestedAt: &now})
}

// ApproveChef assigns a fresh chef id in the same update that promotes the
// account. A duplicate-key race on the id re-rolls it.
func (s *Service) ApproveChef(ctx context.Context, email string) (*models.Account, error) {
	var lastErr error
	for i := 0; i < approveAttempts; i++ {
		chefID, err := s.chefs.Allocate(ctx)
		if err != nil {
			return nil, err
		}
		now := s.now()
		a, err := s.apply(ctx, email, EventApproveChef, Update{ChefID: chefID, ChefApprovedAt: &now})
		if err == nil {
			log.Printf("ApproveChef: %s is now %s", email, chefID)
			return a, nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *Service) RejectChef(ctx context.Context, email string) (*models.Account, error) {
	return s.apply(ctx, email, EventRejectChef, Update{ClearChefRequest: true})
}

func (s *Service) ApproveAdmin(ctx context.Context, email string) (*models.Account, error) {
	now := s.now()
	return s.apply(ctx, email, EventApproveAdmin, Update{AdminApprovedAt: &now})
}

func (s *Service) RejectAdmin(ctx context.Context, email string) (*models.Account, error) {
	return s.apply(ctx, email, EventRejectAdmin, Update{ClearAdminRequest: true})
}

// DemoteChef returns a chef to user. The chef id stays on the account and is
// never handed out again.
func (s *Service) DemoteChef(ctx context.Context, email string) (*models.Account, error) {
	return s.apply(ctx, email, EventDemoteChef, Update{})
}

// FlagFraud marks a non-admin account as fraud.
func (s *Service) FlagFraud(ctx context.Context, email string) (*models.Account, error) {
	email = utils.NormalizeEmail(email)
	cond := Condition{NotRole: models.RoleAdmin, NotStatus: models.StatusFraud}
	a, err := s.repo.Transition(ctx, email, cond, Update{Status: models.StatusFraud})
	if err != nil {
		return nil, err
	}
	if a != nil {
		log.Printf("FlagFraud: %s flagged", email)
		return a, nil
	}

	current, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if current.Role == models.RoleAdmin {
		return nil, apperr.InvalidState("admin accounts cannot be flagged")
	}
	return nil, apperr.InvalidState("account is already flagged")
}

// ClearFraud restores a flagged account to active.
func (s *Service) ClearFraud(ctx context.Context, email string) (*models.Account, error) {
	email = utils.NormalizeEmail(email)
	a, err := s.repo.Transition(ctx, email, Condition{Status: models.StatusFraud}, Update{Status: models.StatusActive})
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		return nil, err
	}
	return nil, apperr.InvalidState("account is not flagged")
}

func (s *Service) List(ctx context.Context, f ListFilter, p utils.Page) ([]models.Account, int64, error) {
	return s.repo.List(ctx, f, p)
}

// Pending lists accounts waiting for a chef or admin decision.
func (s *Service) Pending(ctx context.Context, p utils.Page) ([]models.Account, int64, error) {
	return s.repo.List(ctx, ListFilter{Roles: []models.Role{models.RoleChefPending, models.RoleAdminPending}}, p)
}

// apply runs ev as one conditional update. When nothing matched, the current
// account decides between NotFound and the transition error.
func (s *Service) apply(ctx context.Context, email string, ev Event, upd Update) (*models.Account, error) {
	email = utils.NormalizeEmail(email)
	from, to, err := Rule(ev)
	if err != nil {
		return nil, err
	}
	upd.Role = to

	a, err := s.repo.Transition(ctx, email, Condition{Role: from}, upd)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	current, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := Transition(current.Role, ev); err != nil {
		return nil, err
	}
	// The role moved between the update and the read; report the state we saw.
	return nil, apperr.InvalidState("account changed concurrently")
}
