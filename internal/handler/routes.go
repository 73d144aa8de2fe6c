package handler

import (
	"fieldsales-service/internal/auth"
	mid "fieldsales-service/internal/middleware"
	"fieldsales-service/prometheus"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every endpoint. Everything under /api requires a bearer token.
func RegisterRoutes(e *echo.Echo, authenticator *auth.Authenticator) {
	e.GET("/health", HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	api := e.Group("/api", mid.AuthMiddleware(authenticator))

	collections := api.Group("/collections")
	collections.POST("/create", CreateCollection)
	collections.GET("/list", ListCollections)
	collections.POST("/complete", CompleteCollection)

	orders := api.Group("/item-orders")
	orders.POST("/create", CreateItemOrder)
	orders.GET("/list", ListItemOrders)
	orders.POST("/status-change", ChangeItemOrderStatus)

	sales := api.Group("/sales")
	sales.POST("/create", CreateSales)
	sales.GET("/list", ListPendingSales)
	sales.GET("/list-all", ListAllSales)
	sales.POST("/status-change", ChangeSalesStatus)

	returns := api.Group("/sales-return")
	returns.POST("/create", CreateSalesReturn)
	returns.GET("/list", ListSalesReturns)
	returns.POST("/status-change", ChangeSalesReturnStatus)

	punch := api.Group("/punch")
	punch.POST("/shop-location", SaveShopLocation)
	punch.GET("/firms", ListFirms)
	punch.GET("/shop-locations", ListShopLocations)
	punch.POST("/shop-location/status", UpdateShopLocationStatus)
	punch.POST("/punchin", PunchIn)
	punch.POST("/punchout/:id", PunchOut)
	punch.GET("/punchin/active", ActivePunchIn)
	punch.GET("/punchins", ListPunchIns)
	punch.POST("/punchin/verification", UpdatePunchInVerification)

	api.GET("/user-areas", GetUserAreas)
	api.POST("/user-areas", ReplaceUserAreas)

	api.GET("/areas", ListAreas)
	api.GET("/debtors", ListDebtors)
	api.GET("/users", ListUsers)
	api.GET("/products", ListProducts)

	api.GET("/settings-options", GetSettings)
	api.POST("/settings-options", SaveSettings)
}
