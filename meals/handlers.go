package meals

import (
	"net/http"
	"strings"

	"homedish/apperr"
	"homedish/middleware"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/meals?search=&chefId=&minPrice=&maxPrice=&sort=&order=&page=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	f, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	h.list(w, r, f)
}

// GET /api/chef/meals
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	f, err := parseFilter(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	f.ChefID = middleware.ChefIDFrom(r.Context())
	h.list(w, r, f)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f Filter) {
	page := utils.ParsePage(r)
	items, total, err := h.svc.List(r.Context(), f, page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// GET /api/meals/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	m, err := h.svc.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// POST /api/meals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	chef, ok := middleware.AccountFrom(r.Context())
	if !ok {
		utils.WriteError(w, apperr.Forbidden("chef access required"))
		return
	}
	var req CreateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	m, err := h.svc.Create(r.Context(), chef, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"message": "meal created", "insertedId": m.ID, "meal": m})
}

// PATCH /api/meals/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p Patch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, err)
		return
	}
	m, err := h.svc.Update(r.Context(), middleware.ChefIDFrom(r.Context()), ps.ByName("id"), p)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": "meal updated", "modifiedCount": 1, "meal": m})
}

// DELETE /api/meals/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), middleware.ChefIDFrom(r.Context()), ps.ByName("id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": "meal deleted", "deletedCount": 1})
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	f := Filter{
		Search:   strings.TrimSpace(q.Get("search")),
		ChefID:   strings.TrimSpace(q.Get("chefId")),
		MinPrice: utils.ParseFloat(r, "minPrice"),
		MaxPrice: utils.ParseFloat(r, "maxPrice"),
		Sort:     q.Get("sort"),
	}
	switch f.Sort {
	case "", "createdAt", "price", "rating":
	default:
		return f, apperr.Validation("sort must be one of price, rating, createdAt")
	}
	switch q.Get("order") {
	case "asc":
		f.Asc = true
	case "", "desc":
	default:
		return f, apperr.Validation("order must be asc or desc")
	}
	return f, nil
}
