package orders

import (
	"context"
	"net/http"

	"homedish/middleware"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	o, err := h.svc.Create(r.Context(), utils.GetEmailFromRequest(r), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message":    "order placed",
		"insertedId": o.ID,
		"order":      o,
	})
}

// GET /api/orders/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, err := h.svc.Get(r.Context(), ps.ByName("id"), utils.GetEmailFromRequest(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, o)
}

// GET /api/users/me/orders?status=
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	status := models.OrderStatus(r.URL.Query().Get("status"))
	items, total, err := h.svc.ListForCustomer(r.Context(), utils.GetEmailFromRequest(r), status, page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// GET /api/chef/orders?status=
func (h *Handler) ListChef(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	status := models.OrderStatus(r.URL.Query().Get("status"))
	items, total, err := h.svc.ListForChef(r.Context(), middleware.ChefIDFrom(r.Context()), status, page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// PATCH /api/orders/:id/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "order accepted", func(ctx context.Context, id string) (*models.Order, error) {
		return h.svc.Accept(ctx, middleware.ChefIDFrom(ctx), id)
	})
}

// PATCH /api/orders/:id/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "order cancelled", func(ctx context.Context, id string) (*models.Order, error) {
		return h.svc.Cancel(ctx, middleware.ChefIDFrom(ctx), id)
	})
}

// PATCH /api/orders/:id/deliver
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email := utils.GetEmailFromRequest(r)
	h.transition(w, r, ps, "order delivered", func(ctx context.Context, id string) (*models.Order, error) {
		return h.svc.Deliver(ctx, email, id)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params, msg string, op func(context.Context, string) (*models.Order, error)) {
	o, err := op(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":       msg,
		"modifiedCount": 1,
		"order":         o,
	})
}

// GET /api/admin/orders/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts, err := h.svc.Summary(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"total": total, "byStatus": counts})
}
