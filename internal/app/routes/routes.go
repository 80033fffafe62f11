package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/selvaalegre/portal/internal/app/controllers"
	"github.com/selvaalegre/portal/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	calendarController *controllers.CalendarController,
	requestController *controllers.RequestController,
	registryController *controllers.RegistryController,
	publicationController *controllers.PublicationController,
	messageController *controllers.MessageController,
	dashboardController *controllers.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	pollLimiter *middleware.RateLimiter,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", dashboardController.Health)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/dashboard", dashboardController.GetDashboard)
		authenticated.GET("/neighbors", userController.ListNeighbors)

		profile := authenticated.Group("/profile")
		{
			profile.GET("", userController.GetProfile)
			profile.PUT("", userController.UpdateProfile)
			profile.PUT("/password", userController.ChangePassword)
			profile.POST("/photo", userController.UploadProfilePhoto)
		}

		authenticated.GET("/calendar", calendarController.GetMonth)
		events := authenticated.Group("/events")
		{
			events.GET("", calendarController.ListEvents)
			events.POST("", calendarController.CreateEvent)
			events.GET("/:id", calendarController.GetEvent)
			events.PUT("/:id", calendarController.UpdateEvent)
			events.DELETE("/:id", calendarController.DeleteEvent)
		}

		requests := authenticated.Group("/requests")
		{
			requests.GET("", requestController.ListRequests)
			requests.POST("", requestController.SubmitRequest)
			requests.GET("/:id", requestController.GetRequest)
			requests.DELETE("/:id", requestController.DeleteRequest)
			requests.PUT("/:id/resolve", authMiddleware.AdminRequired(), requestController.ResolveRequest)
		}

		pets := authenticated.Group("/pets")
		{
			pets.GET("", registryController.ListPets)
			pets.POST("", registryController.CreatePet)
			pets.GET("/:id", registryController.GetPet)
			pets.PUT("/:id", registryController.UpdatePet)
			pets.DELETE("/:id", registryController.DeletePet)
		}

		vehicles := authenticated.Group("/vehicles")
		{
			vehicles.GET("", registryController.ListVehicles)
			vehicles.POST("", registryController.CreateVehicle)
			vehicles.GET("/:id", registryController.GetVehicle)
			vehicles.PUT("/:id", registryController.UpdateVehicle)
			vehicles.DELETE("/:id", registryController.DeleteVehicle)
		}

		publications := authenticated.Group("/publications")
		{
			publications.GET("", publicationController.ListPublications)
			publications.GET("/:id", publicationController.GetPublication)

			publicationsAdmin := publications.Group("")
			publicationsAdmin.Use(authMiddleware.AdminRequired())
			{
				publicationsAdmin.POST("", publicationController.CreatePublication)
				publicationsAdmin.PUT("/:id", publicationController.UpdatePublication)
				publicationsAdmin.DELETE("/:id", publicationController.DeletePublication)
			}
		}

		messages := authenticated.Group("/messages")
		{
			messages.GET("", messageController.Inbox)
			messages.POST("", messageController.Send)
			messages.GET("/unread-counts", authMiddleware.AdminRequired(), messageController.UnreadCounts)
			messages.GET("/:userId", messageController.OpenConversation)
			messages.GET("/:userId/poll", pollLimiter.Middleware(), messageController.Poll)
		}

		// --- Administration ---
		users := authenticated.Group("/users")
		users.Use(authMiddleware.AdminRequired())
		{
			users.GET("", userController.ListUsers)
			users.POST("", userController.CreateUser)
			users.GET("/:id", userController.GetUser)
			users.PUT("/:id", userController.UpdateUser)
			users.PUT("/:id/active", userController.SetUserActive)
			users.DELETE("/:id", userController.DeleteUser)
		}
	}
}
