package routes

import (
	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, d *Deps) {
	AddAuthRoutes(router, d)
	AddUserRoutes(router, d)
	AddAdminRoutes(router, d)
	AddMealRoutes(router, d)
	AddReviewsRoutes(router, d)
	AddFavoriteRoutes(router, d)
	AddOrderRoutes(router, d)
	AddPayRoutes(router, d)
	AddReceiptRoutes(router, d)
}
