package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/config"
	"recipe-api/internal/database"
	"recipe-api/internal/handlers"
	"recipe-api/internal/middleware"
	"recipe-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	migrator.Close()

	var store storage.Store
	var diskStore *storage.DiskStore
	switch cfg.StorageDriver {
	case "supabase":
		store, err = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseStorageBucket)
	default:
		diskStore, err = storage.NewDiskStore(cfg.StoragePath, cfg.BaseURL)
		store = diskStore
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	authHandler := handlers.NewAuthHandler(cfg, dbClient)
	usersHandler := handlers.NewUsersHandler(dbClient, store)
	recipesHandler := handlers.NewRecipesHandler(dbClient, store)
	likesHandler := handlers.NewLikesHandler(dbClient)
	bookmarksHandler := handlers.NewBookmarksHandler(dbClient)
	commentsHandler := handlers.NewCommentsHandler(dbClient)
	homeHandler := handlers.NewHomeHandler(dbClient)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.NewRateLimiter(20, 40).Middleware())

	router.GET("/health", handlers.HealthHandler)

	// Local driver serves stored images from the public static path.
	if diskStore != nil {
		router.Static("/storage", diskStore.Root())
	}

	api := router.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/recipe", recipesHandler.List)
	api.GET("/recipe/:id", recipesHandler.Show)
	api.GET("/best-recipe", homeHandler.BestRecipes)
	api.GET("/search", homeHandler.Search)

	// Authenticated routes
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(cfg, dbClient))

	auth.POST("/logout", authHandler.Logout)
	auth.GET("/user", usersHandler.Me)
	auth.PUT("/user/:id", usersHandler.Update)

	auth.POST("/recipe", recipesHandler.Create)
	auth.PUT("/recipe/:id", recipesHandler.Update)
	auth.DELETE("/recipe/:id", recipesHandler.Delete)
	auth.GET("/user-recipe", homeHandler.UserRecipes)

	auth.GET("/like", likesHandler.Lookup)
	auth.POST("/like", likesHandler.Create)
	auth.DELETE("/like/:id", likesHandler.Delete)

	auth.GET("/bookmark", bookmarksHandler.Index)
	auth.POST("/bookmark", bookmarksHandler.Create)
	auth.DELETE("/bookmark/:id", bookmarksHandler.Delete)

	auth.GET("/comment", commentsHandler.List)
	auth.POST("/comment", commentsHandler.Create)
	auth.DELETE("/comment/:id", commentsHandler.Delete)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
