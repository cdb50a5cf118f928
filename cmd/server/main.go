package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plateful/mealplan-app/internal/api"
	"plateful/mealplan-app/internal/config"
	"plateful/mealplan-app/internal/repository/mongo"
	"plateful/mealplan-app/internal/service"
	"plateful/mealplan-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Meal Plan App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureRecipeIndexes(ctx, appDB.Collection("recipes"))
		mongo.EnsureLibraryIndexes(ctx, appDB.Collection("libraries"))
		mongo.EnsureMealPlanIndexes(ctx, appDB.Collection("meal_plans"), appDB.Collection("meal_plan_entries"))
		mongo.EnsureShoppingListIndexes(ctx, appDB.Collection("shopping_lists"))
		mongo.EnsureUploadIndexes(ctx, appDB.Collection("uploads"))
		mongo.EnsureChatIndexes(ctx, appDB.Collection("chat_messages"), appDB.Collection("chat_proposals"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	recipeRepo := mongo.NewMongoRecipeRepository(appDB)
	libraryRepo := mongo.NewMongoLibraryRepository(appDB)
	planRepo := mongo.NewMongoMealPlanRepository(appDB)
	shoppingRepo := mongo.NewMongoShoppingListRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)
	chatRepo := mongo.NewMongoChatRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	recipeService := service.NewRecipeService(recipeRepo, libraryRepo, uploadRepo, fileStorage)
	planService := service.NewMealPlanService(planRepo, recipeRepo)
	shoppingService := service.NewShoppingListService(shoppingRepo, planRepo, recipeRepo)
	chatService := service.NewChatService(chatRepo, recipeRepo, planService, nil)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, recipeService, planService, shoppingService, chatService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
