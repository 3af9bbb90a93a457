package pay

import (
	"io"
	"net/http"

	"homedish/apperr"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

const maxWebhookBytes = 65536

type Handler struct {
	bridge *Bridge
}

func NewHandler(bridge *Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// POST /api/payments/intent
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	ci, err := h.bridge.CreateIntent(r.Context(), req.OrderID, utils.GetEmailFromRequest(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ci)
}

// POST /api/payments
func (h *Handler) Record(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RecordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	o, entry, err := h.bridge.RecordPayment(r.Context(), utils.GetEmailFromRequest(r), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	resp := map[string]any{"message": "payment recorded", "order": o}
	if entry != nil {
		resp["insertedId"] = entry.ID
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// PATCH /api/orders/:id/payment-status
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		TransactionID string `json:"transactionId"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}
	o, err := h.bridge.MarkPaid(r.Context(), ps.ByName("id"), utils.GetEmailFromRequest(r), req.TransactionID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":       "payment status updated",
		"modifiedCount": 1,
		"order":         o,
	})
}

// POST /api/payments/webhook
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteError(w, apperr.Validation("failed to read webhook body"))
		return
	}
	if err := h.bridge.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// GET /api/users/me/payments
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := utils.ParsePage(r)
	items, total, err := h.bridge.ListPayments(r.Context(), utils.GetEmailFromRequest(r), page)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPaged(items, total, page))
}
