package reviews

import (
	"net/http"

	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/meals/:id/reviews
func (h *Handler) ListForMeal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	page := utils.ParsePage(r)
	items, total, err := h.svc.ListForMeal(r.Context(), ps.ByName("id"), page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// GET /api/users/me/reviews
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	items, total, err := h.svc.ListMine(r.Context(), utils.GetEmailFromRequest(r), page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}

// POST /api/meals/:id/reviews
func (h *Handler) Add(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req AddRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	rv, err := h.svc.Add(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id"), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{"message": "review added", "insertedId": rv.ID, "review": rv})
}

// PATCH /api/reviews/:id
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var p Patch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, err)
		return
	}
	rv, err := h.svc.Edit(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id"), p)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": "review updated", "modifiedCount": 1, "review": rv})
}

// DELETE /api/reviews/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), utils.GetEmailFromRequest(r), ps.ByName("id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"message": "review deleted", "deletedCount": 1})
}
