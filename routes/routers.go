package routes

import (
	"net/http"

	"lablinc/constants"
	"lablinc/controllers"
	middlewares "lablinc/middleware"
	"lablinc/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles every controller mounted on the router.
type Handlers struct {
	Tokens        *services.TokenService
	Auth          *controllers.AuthController
	Instruments   *controllers.InstrumentController
	Bookings      *controllers.BookingController
	Payments      *controllers.PaymentController
	Reviews       *controllers.ReviewController
	Notifications *controllers.NotificationController
	Admin         *controllers.AdminController
	Uploads       *controllers.UploadController
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	auth := func(roles ...int) gin.HandlerFunc {
		return middlewares.AuthMiddleware(h.Tokens, roles...)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws", h.Notifications.Stream)

	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/google", h.Auth.GoogleLogin)
	v1.GET("/profile", auth(), h.Auth.Profile)
	v1.PUT("/profile", auth(), h.Auth.UpdateProfile)
	v1.PUT("/profile/password", auth(), h.Auth.ChangePassword)
	v1.PUT("/profile/settings", auth(), h.Auth.UpdateSettings)

	v1.GET("/instruments", h.Instruments.List)
	v1.GET("/instruments/:id", h.Instruments.Get)
	v1.GET("/instruments/:id/availability", h.Instruments.Availability)
	v1.GET("/instruments/:id/reviews", h.Instruments.Reviews)
	v1.POST("/instruments", auth(constants.RoleInstitute), h.Instruments.Create)
	v1.PUT("/instruments/:id", auth(constants.RoleInstitute, constants.RoleAdmin), h.Instruments.Update)
	v1.DELETE("/instruments/:id", auth(constants.RoleInstitute, constants.RoleAdmin), h.Instruments.Delete)

	v1.POST("/bookings/quote", h.Bookings.Quote)
	v1.POST("/bookings", auth(constants.RoleMSME), h.Bookings.Create)
	v1.GET("/bookings", auth(), h.Bookings.List)
	v1.GET("/bookings/:id", auth(), h.Bookings.Get)
	v1.PATCH("/bookings/:id/status", auth(), h.Bookings.UpdateStatus)

	v1.POST("/payments", auth(constants.RoleMSME), h.Payments.Create)
	v1.GET("/payments", auth(), h.Payments.List)
	v1.GET("/payments/:id", auth(), h.Payments.Get)

	v1.POST("/reviews", auth(constants.RoleMSME), h.Reviews.Create)

	v1.GET("/notifications", auth(), h.Notifications.List)
	v1.GET("/notifications/unread-count", auth(), h.Notifications.UnreadCount)
	v1.PUT("/notifications/read-all", auth(), h.Notifications.MarkAllRead)
	v1.PUT("/notifications/:id/read", auth(), h.Notifications.MarkRead)

	v1.POST("/upload", auth(constants.RoleInstitute, constants.RoleAdmin), h.Uploads.UploadImage)

	admin := v1.Group("/admin", auth(constants.RoleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id/status", h.Admin.SetUserStatus)
	admin.PUT("/users/:id/verify", h.Admin.VerifyInstitute)
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/audit-logs", h.Admin.AuditLogs)
}
