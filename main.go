package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/config"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/controllers"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/database"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/middleware"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Configuration must be complete before anything binds or connects.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(ctx)

	store := database.NewUserStore(client.Database(cfg.DatabaseName))
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	hasher := auth.NewHasher(cfg.Pepper, cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	service := auth.NewService(store, hasher, issuer)

	if err := utils.SeedAdminUser(ctx, store, hasher, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	// Role requirements live in one registry instead of per-handler checks;
	// routes without an entry are public.
	registry := middleware.NewRegistry()
	registry.Require(http.MethodGet, "/admin/users/:id", models.RoleAdmin)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.PopulateUser(issuer))
	r.Use(middleware.Guard(registry, issuer, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/signup/:role", controllers.SignUp(service))
	r.POST("/auth/signin", controllers.SignIn(service))
	r.POST("/auth/logout", controllers.Logout(service, issuer))
	r.POST("/auth/refresh", controllers.Refresh(service, issuer))
	r.GET("/auth/me", controllers.Me())

	r.GET("/admin/users/:id", controllers.GetUser(store))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
