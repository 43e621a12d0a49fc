package routes

import (
	"mjolnir/ratelim"

	"github.com/julienschmidt/httprouter"
)

func RoutesWrapper(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	AddAuthRoutes(router, rateLimiter)
	AddProductRoutes(router, rateLimiter)
	AddCategoryRoutes(router, rateLimiter)
	AddCartRoutes(router, rateLimiter)
	AddOrderRoutes(router, rateLimiter)
	AddReportRoutes(router, rateLimiter)
	AddStaticRoutes(router)
}
