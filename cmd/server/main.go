package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"vistara-hms/config"
	"vistara-hms/internal/database"
	"vistara-hms/internal/gateway/middleware"
	"vistara-hms/internal/services/notification"
	"vistara-hms/internal/utils"

	invhandler "vistara-hms/internal/services/inventory/handler"
	qrhandler "vistara-hms/internal/services/qrorder/handler"
	reshandler "vistara-hms/internal/services/reservation/handler"
	resthandler "vistara-hms/internal/services/restaurant/handler"
	sethandler "vistara-hms/internal/services/settings/handler"
	userhandler "vistara-hms/internal/services/user/handler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)

	sender := notification.NewRedisSender(rdb, cfg.Push.Channel)
	dispatcher := notification.NewDispatcher(db, sender, cfg.Push)

	users := userhandler.NewUserHandler(db, cfg.Auth.TokenTTL)
	reservations := reshandler.NewReservationHandler(db, rdb, dispatcher)
	restaurant := resthandler.NewRestaurantHandler(db, rdb, dispatcher)
	qrorders := qrhandler.NewQROrderHandler(db, rdb, dispatcher)
	inventory := invhandler.NewInventoryHandler(db)
	settings := sethandler.NewSettingsHandler(db, rdb)
	notifications := notification.NewHTTPHandler(dispatcher)

	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit("300-M"))

	// Public: staff auth and the guest-facing QR flow.
	auth := v1.Group("/auth")
	{
		auth.POST("/register", users.Register)
		auth.POST("/login", users.Login)
	}

	guest := v1.Group("/order", middleware.RateLimit("30-M"))
	{
		guest.GET("/info/:token", qrorders.Info)
		guest.GET("/existing/:token", qrorders.ExistingOrder)
		guest.POST("/submit/:token", qrorders.Submit)
		guest.PUT("/update/:orderId", qrorders.Update)
		guest.POST("/clear/:token", qrorders.Clear)
	}

	v1.GET("/notifications/vapid-key", notifications.VapidKey)

	// Everything else requires a staff token.
	api := v1.Group("", middleware.JWTAuth())
	{
		api.GET("/me", users.Me)
		api.GET("/users", users.ListUsers)
		api.PATCH("/users/:id/active", users.SetActive)

		api.GET("/reservations", reservations.ListReservations)
		api.POST("/reservations", reservations.CreateReservation)
		api.GET("/reservations/availability", reservations.ListAvailableRooms)
		api.GET("/reservations/:id", reservations.GetReservation)
		api.PATCH("/reservations/:id", reservations.UpdateReservation)
		api.DELETE("/reservations/:id", reservations.DeleteReservation)
		api.POST("/reservations/:id/check-in", reservations.CheckIn)
		api.POST("/reservations/:id/check-out", reservations.CheckOut)
		api.GET("/guests", reservations.ListGuests)

		api.GET("/restaurant/orders", restaurant.ListOrders)
		api.POST("/restaurant/orders", restaurant.CreateOrder)
		api.GET("/restaurant/orders/room", restaurant.ListRoomServiceOrders)
		api.GET("/restaurant/orders/:id", restaurant.GetOrder)
		api.PATCH("/restaurant/orders/:id/status", restaurant.UpdateOrderStatus)
		api.POST("/restaurant/orders/:id/kot", restaurant.GenerateKOT)
		api.POST("/restaurant/orders/:id/bot", restaurant.GenerateBOT)
		api.GET("/restaurant/bills", restaurant.ListBills)
		api.POST("/restaurant/bills", restaurant.CreateBill)
		api.POST("/restaurant/bills/:id/pay", restaurant.PayBill)

		api.GET("/inventory/stock", inventory.ListStockItems)
		api.POST("/inventory/stock", inventory.CreateStockItem)
		api.PATCH("/inventory/stock/:id", inventory.UpdateStockItem)
		api.GET("/inventory/stock/:id/movements", inventory.ListMovements)
		api.POST("/inventory/movements", inventory.CreateMovement)

		api.GET("/settings/branches", settings.ListBranches)
		api.POST("/settings/branches", settings.CreateBranch)
		api.PATCH("/settings/branches/:id", settings.UpdateBranch)
		api.GET("/settings/taxes", settings.ListTaxes)
		api.POST("/settings/taxes", settings.CreateTax)
		api.PATCH("/settings/taxes/:id", settings.UpdateTax)
		api.GET("/settings/tables", settings.ListTables)
		api.POST("/settings/tables", settings.CreateTable)
		api.POST("/settings/tables/bulk", settings.BulkCreateTables)
		api.PATCH("/settings/tables/:id", settings.UpdateTable)
		api.GET("/settings/categories", settings.ListCategories)
		api.POST("/settings/categories", settings.CreateCategory)
		api.POST("/settings/categories/bulk", settings.BulkCreateCategories)
		api.PATCH("/settings/categories/:id", settings.UpdateCategory)
		api.GET("/settings/dishes", settings.ListDishes)
		api.POST("/settings/dishes", settings.CreateDish)
		api.POST("/settings/dishes/bulk", settings.BulkCreateDishes)
		api.PATCH("/settings/dishes/:id", settings.UpdateDish)
		api.GET("/settings/room-types", settings.ListRoomTypes)
		api.POST("/settings/room-types", settings.CreateRoomType)
		api.PATCH("/settings/room-types/:id", settings.UpdateRoomType)
		api.GET("/settings/rooms", settings.ListRooms)
		api.POST("/settings/rooms", settings.CreateRoom)
		api.PATCH("/settings/rooms/:id", settings.UpdateRoom)

		api.POST("/notifications/subscribe", notifications.Subscribe)
		api.DELETE("/notifications/unsubscribe", notifications.Unsubscribe)
	}

	log.Printf("server listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
