package routes

import (
	"healthcare-ai-server/internal/assistant"
	"healthcare-ai-server/internal/config"
	"healthcare-ai-server/internal/facade"
	"healthcare-ai-server/internal/handlers"
	"healthcare-ai-server/internal/middleware"
	"healthcare-ai-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	f := facade.New(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	queryHandler := handlers.NewQueryHandler(f)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	adminHandler := handlers.NewAdminHandler(db, f)
	chatHandler := handlers.NewChatHandler(assistant.New(cfg, f))

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/me", authHandler.GetMe)
			authRoutesPrivate.PATCH("/me", authHandler.UpdateMe)
		}

		// Façade-backed query endpoints. Target scoping happens inside the
		// façade: non-elevated callers always act on their own records.
		private.GET("/profile", queryHandler.GetProfile)
		private.GET("/billing", queryHandler.GetBilling)
		private.GET("/lab-results", queryHandler.GetLabResults)
		private.GET("/prescriptions", queryHandler.GetPrescriptions)
		private.GET("/doctors", queryHandler.ListDoctors)
		private.GET("/doctors/search", queryHandler.SearchDoctors)

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", queryHandler.BookAppointment)
			appointmentRoutes.GET("", queryHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}

		// Conversational assistant; the tool surface is shaped per-role inside
		// the façade.
		private.POST("/chat", chatHandler.Chat)

		// Elevated routes
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
		{
			adminRoutes.GET("/patients", adminHandler.ListPatients)
			adminRoutes.GET("/patients/:id", adminHandler.GetPatient)
			adminRoutes.PATCH("/patients/:id", adminHandler.UpdatePatient)
			adminRoutes.GET("/billings", adminHandler.ListBillings)
			adminRoutes.PATCH("/billings/:id", adminHandler.UpdateBillingStatus)
			adminRoutes.GET("/stats", adminHandler.GetStats)

			// User lifecycle is admin-only
			userRoutes := adminRoutes.Group("/users")
			userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				userRoutes.GET("", adminHandler.ListUsers)
				userRoutes.PATCH("/:id/status", adminHandler.UpdateUserStatus)
				userRoutes.DELETE("/:id", adminHandler.DeleteUser)
			}
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
