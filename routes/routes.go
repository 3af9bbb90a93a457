package routes

import (
	"homedish/accounts"
	"homedish/auth"
	"homedish/favorites"
	"homedish/meals"
	"homedish/middleware"
	"homedish/orders"
	"homedish/pay"
	"homedish/ratelim"
	"homedish/receipts"
	"homedish/reviews"

	"github.com/julienschmidt/httprouter"
)

// Deps carries the handlers and shared middleware inputs the route table needs.
type Deps struct {
	Tokens      *auth.TokenCodec
	AccountRepo middleware.AccountFinder
	Limiter     *ratelim.RateLimiter
	Idempotency pay.IdempotencyStore

	Accounts  *accounts.Handler
	Meals     *meals.Handler
	Reviews   *reviews.Handler
	Favorites *favorites.Handler
	Orders    *orders.Handler
	Payments  *pay.Handler
	Receipts  *receipts.Handler
}

func (d *Deps) authed() middleware.Middleware {
	return middleware.Authenticate(d.Tokens)
}

func (d *Deps) chef() middleware.Middleware {
	return middleware.Chain(d.authed(), middleware.RequireChef(d.AccountRepo))
}

func (d *Deps) admin() middleware.Middleware {
	return middleware.Chain(d.authed(), middleware.RequireAdmin(d.AccountRepo))
}

func AddAuthRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/auth/register", d.Limiter.Limit(d.Accounts.Register))
	router.POST("/api/auth/token", d.Limiter.Limit(d.Accounts.IssueToken))
	router.POST("/api/auth/logout", d.Accounts.Logout)
}

func AddUserRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/users/me", d.authed()(d.Accounts.Me))
	router.PATCH("/api/users/me", d.authed()(d.Accounts.UpdateMe))
	router.POST("/api/users/me/chef-request", d.authed()(d.Accounts.RequestChef))
	router.POST("/api/users/me/admin-request", d.authed()(d.Accounts.RequestAdmin))

	router.GET("/api/users/me/reviews", d.authed()(d.Reviews.ListMine))
	router.GET("/api/users/me/favorites", d.authed()(d.Favorites.List))
	router.GET("/api/users/me/orders", d.authed()(d.Orders.ListMine))
	router.GET("/api/users/me/payments", d.authed()(d.Payments.ListMine))
}

func AddAdminRoutes(router *httprouter.Router, d *Deps) {
	admin := d.admin()
	router.GET("/api/admin/users", admin(d.Accounts.ListUsers))
	router.GET("/api/admin/requests", admin(d.Accounts.PendingRequests))
	router.GET("/api/admin/orders/summary", admin(d.Orders.Summary))

	actions := map[string]string{
		"chef/approve":  "approve-chef",
		"chef/reject":   "reject-chef",
		"admin/approve": "approve-admin",
		"admin/reject":  "reject-admin",
		"fraud":         "fraud",
		"unfraud":       "unfraud",
		"demote":        "demote",
	}
	for path, action := range actions {
		router.PATCH("/api/admin/users/:email/"+path, admin(d.Accounts.AdminAction(action)))
	}
}

func AddMealRoutes(router *httprouter.Router, d *Deps) {
	chef := d.chef()
	router.GET("/api/meals", d.Meals.List)
	router.GET("/api/meals/:id", d.Meals.Get)
	router.POST("/api/meals", chef(d.Meals.Create))
	router.PATCH("/api/meals/:id", chef(d.Meals.Update))
	router.DELETE("/api/meals/:id", chef(d.Meals.Delete))
	router.GET("/api/chef/meals", chef(d.Meals.ListOwn))
}

func AddReviewsRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/meals/:id/reviews", d.Reviews.ListForMeal)
	router.POST("/api/meals/:id/reviews", d.authed()(d.Reviews.Add))
	router.PATCH("/api/reviews/:id", d.authed()(d.Reviews.Edit))
	router.DELETE("/api/reviews/:id", d.authed()(d.Reviews.Delete))
}

func AddFavoriteRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/favorites", d.authed()(d.Favorites.Add))
	router.DELETE("/api/favorites/:id", d.authed()(d.Favorites.Delete))
}

func AddOrderRoutes(router *httprouter.Router, d *Deps) {
	chef := d.chef()
	router.POST("/api/orders",
		middleware.Chain(
			d.Limiter.Limit,
			d.authed(),
			pay.Idempotent(d.Idempotency),
		)(d.Orders.Create),
	)
	router.GET("/api/orders/:id", d.authed()(d.Orders.Get))
	router.GET("/api/chef/orders", chef(d.Orders.ListChef))
	router.PATCH("/api/orders/:id/accept", chef(d.Orders.Accept))
	router.PATCH("/api/orders/:id/cancel", chef(d.Orders.Cancel))
	router.PATCH("/api/orders/:id/deliver", chef(d.Orders.Deliver))
}

func AddReceiptRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/orders/:id/receipt", d.authed()(d.Receipts.Download))
	router.GET("/api/receipts/verify", d.Receipts.Verify)
}
