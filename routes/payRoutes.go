package routes

import (
	"homedish/middleware"
	"homedish/pay"

	"github.com/julienschmidt/httprouter"
)

// AddPayRoutes wires the payment bridge handlers to the router.
func AddPayRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/payments/intent",
		middleware.Chain(
			d.Limiter.Limit,
			d.authed(),
		)(d.Payments.CreateIntent),
	)

	router.POST("/api/payments",
		middleware.Chain(
			d.Limiter.Limit,
			d.authed(),
			pay.Idempotent(d.Idempotency),
		)(d.Payments.Record),
	)

	router.PATCH("/api/orders/:id/payment-status", d.authed()(d.Payments.PaymentStatus))

	// Authenticated by the Stripe-Signature header, not a session.
	router.POST("/api/payments/webhook", d.Payments.Webhook)
}
