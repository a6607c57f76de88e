package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/safargo/safar-backend/internal/database"
	"github.com/safargo/safar-backend/internal/handlers"
	"github.com/safargo/safar-backend/internal/middleware"
	"github.com/safargo/safar-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Firebase is optional, push notifications are skipped when unset
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	hub := services.NewHub()
	go hub.Run()
	go services.StartFeedRelay(context.Background(), hub)

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"}
	r.Use(cors.New(config))

	// Serve locally stored uploads when S3 is not configured
	r.Static("/uploads", services.LocalUploadDir())

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/verify-email", handlers.VerifyEmail(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/verify-otp", handlers.VerifyOTP(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// Geocoding is public so the search screen works before login
		geo := api.Group("/geo")
		{
			geo.GET("/autocomplete", handlers.AutocompletePlaces())
			geo.GET("/place", handlers.GetPlaceDetails())
			geo.GET("/reverse", handlers.ReverseGeocode())
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.ConnectWebSocket(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		protected.Use(middleware.IdempotencyMiddleware(services.RedisClient))
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/avatar", handlers.UploadAvatar(db))
				users.DELETE("/profile", handlers.DeleteAccount(db))
				users.POST("/fcm-token", handlers.UpdateFCMToken(db))
				users.DELETE("/fcm-token", handlers.RemoveFCMToken(db))
				users.GET("/:id", handlers.GetPublicProfile(db))
				users.GET("/:id/reviews", handlers.GetUserReviews(db))
			}

			cars := protected.Group("/cars")
			{
				cars.POST("", handlers.AddCar(db))
				cars.GET("", handlers.GetMyCars(db))
				cars.PUT("/:id", handlers.UpdateCar(db))
				cars.DELETE("/:id", handlers.DeleteCar(db))
			}

			rides := protected.Group("/rides")
			{
				rides.GET("", handlers.SearchRides(db))
				rides.POST("", handlers.CreateRide(db))
				rides.GET("/mine", handlers.GetMyRides(db))
				rides.GET("/:id", handlers.GetRide(db))
				rides.PUT("/:id", handlers.UpdateRide(db, hub))
				rides.POST("/:id/cancel", handlers.CancelRide(db, hub))
				rides.POST("/:id/complete", handlers.CompleteRide(db, hub))
				rides.GET("/:id/bookings", handlers.GetRideBookings(db))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(db, hub))
				bookings.GET("", handlers.GetMyBookings(db))
				bookings.POST("/:id/accept", handlers.AcceptBooking(db, hub))
				bookings.POST("/:id/reject", handlers.RejectBooking(db, hub))
				bookings.POST("/:id/cancel", handlers.CancelBooking(db, hub))
			}

			requests := protected.Group("/ride-requests")
			{
				requests.POST("", handlers.CreateRideRequest(db, hub))
				requests.GET("", handlers.ListRideRequests(db))
				requests.GET("/mine", handlers.GetMyRideRequests(db))
				requests.POST("/:id/close", handlers.CloseRideRequest(db, hub))
			}

			chats := protected.Group("/chats")
			{
				chats.POST("", handlers.StartChat(db))
				chats.GET("", handlers.ListChats(db))
				chats.GET("/:id/messages", handlers.GetMessages(db))
				chats.POST("/:id/messages", handlers.SendMessage(db, hub))
			}

			reviews := protected.Group("/reviews")
			{
				reviews.POST("", handlers.CreateReview(db))
				reviews.GET("/pending", handlers.GetPendingReviews(db))
			}

			saved := protected.Group("/saved-passengers")
			{
				saved.POST("", handlers.SavePassenger(db))
				saved.GET("", handlers.GetSavedPassengers(db))
				saved.PUT("/:id", handlers.UpdateSavedPassenger(db))
				saved.DELETE("/:id", handlers.RemoveSavedPassenger(db))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/topics/subscribe", handlers.SubscribeToTopic(db))
				notifications.POST("/topics/unsubscribe", handlers.UnsubscribeFromTopic(db))
				notifications.GET("/preferences", handlers.GetNotificationPreferences(db))
				notifications.PUT("/preferences", handlers.UpdateNotificationPreferences(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
