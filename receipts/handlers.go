package receipts

import (
	"context"
	"log"
	"net/http"
	"strings"

	"homedish/apperr"
	"homedish/models"
	"homedish/utils"

	"github.com/julienschmidt/httprouter"
)

type OrderSource interface {
	Lookup(ctx context.Context, id string) (*models.Order, error)
}

type Handler struct {
	orders   OrderSource
	signer   *Signer
	currency string
}

func NewHandler(orders OrderSource, signer *Signer, currency string) *Handler {
	return &Handler{orders: orders, signer: signer, currency: currency}
}

// GET /api/orders/:id/receipt
func (h *Handler) Download(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, err := h.orders.Lookup(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	email := utils.GetEmailFromRequest(r)
	if email == "" || (o.UserEmail != email && o.ChefEmail != email) {
		utils.WriteError(w, apperr.Forbidden("not allowed to view this receipt"))
		return
	}
	if !o.Paid() || o.PaidAt == nil {
		utils.WriteError(w, apperr.InvalidState("order has not been paid"))
		return
	}

	pdf, err := Render(o, h.signer.Code(o.ID, *o.PaidAt), h.currency)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+o.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("Download: write receipt %s: %v", o.ID, err)
	}
}

// GET /api/receipts/verify?code=
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	orderID, paidAt, err := h.signer.Verify(code)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	o, err := h.orders.Lookup(r.Context(), orderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"valid":         true,
		"orderId":       orderID,
		"paidAt":        paidAt.UTC(),
		"paymentStatus": o.PaymentStatus,
		"orderStatus":   o.OrderStatus,
	})
}
