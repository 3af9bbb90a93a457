package accounts

import (
	"context"
	"net/http"
	"strings"
	"time"

	"homedish/apperr"
	"homedish/auth"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(uid, email string, role models.Role) (string, time.Time, error)
}

type Handler struct {
	svc          *Service
	tokens       TokenIssuer
	cookieSecure bool
}

func NewHandler(svc *Service, tokens TokenIssuer, cookieSecure bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, cookieSecure: cookieSecure}
}

// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"message": "account created", "user": a})
}

// POST /api/auth/token
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	a, err := h.svc.Authenticate(r.Context(), strings.TrimSpace(req.UID), req.Email)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	token, expires, err := h.tokens.Issue(a.UID, a.Email, a.Role)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	auth.SetSessionCookie(w, token, expires, h.cookieSecure)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     token,
		"expiresAt": expires,
		"role":      a.Role,
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	auth.ClearSessionCookie(w, h.cookieSecure)
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

// GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	a, err := h.svc.Profile(r.Context(), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// PATCH /api/users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name    *string `json:"name"`
		Image   *string `json:"image"`
		Address *string `json:"address"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	a, err := h.svc.UpdateProfile(r.Context(), utils.GetEmailFromRequest(r), ProfileUpdate{
		Name:    req.Name,
		Image:   req.Image,
		Address: req.Address,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}

// POST /api/users/me/chef-request
func (h *Handler) RequestChef(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.selfTransition(w, r, h.svc.RequestChef, "chef request submitted")
}

// POST /api/users/me/admin-request
func (h *Handler) RequestAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.selfTransition(w, r, h.svc.RequestAdmin, "admin request submitted")
}

func (h *Handler) selfTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*models.Account, error), msg string) {
	a, err := op(r.Context(), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": msg, "role": a.Role})
}

// GET /api/admin/users?role=&status=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var f ListFilter
	q := r.URL.Query()
	if role := models.Role(q.Get("role")); role != "" {
		if !role.Valid() {
			utils.WriteError(w, apperr.Validation("unknown role"))
			return
		}
		f.Roles = []models.Role{role}
	}
	if status := models.Status(q.Get("status")); status != "" {
		if !status.Valid() {
			utils.WriteError(w, apperr.Validation("unknown status"))
			return
		}
		f.Status = status
	}

	page := utils.ParsePage(r)
	items, total, err := h.svc.List(r.Context(), f, page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// GET /api/admin/requests
func (h *Handler) PendingRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	items, total, err := h.svc.Pending(r.Context(), page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// AdminAction returns a handle for PATCH /api/admin/users/:email/<action>.
func (h *Handler) AdminAction(action string) httprouter.Handle {
	ops := map[string]func(context.Context, string) (*models.Account, error){
		"approve-chef":  h.svc.ApproveChef,
		"reject-chef":   h.svc.RejectChef,
		"approve-admin": h.svc.ApproveAdmin,
		"reject-admin":  h.svc.RejectAdmin,
		"fraud":         h.svc.FlagFraud,
		"unfraud":       h.svc.ClearFraud,
		"demote":        h.svc.DemoteChef,
	}
	op, ok := ops[action]
	if !ok {
		panic("accounts: unknown admin action " + action)
	}

	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		email := ps.ByName("email")
		if email == "" {
			utils.WriteError(w, apperr.Validation("email is required"))
			return
		}
		a, err := op(r.Context(), email)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]any{
			"message":       action + " applied",
			"modifiedCount": 1,
			"user":          a,
		})
	}
}
