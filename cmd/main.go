package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"storefront/docs"
	"storefront/internal/caching"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/jobs"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	pool, err := database.NewPool(context.Background(), cfg.DatabaseURL, database.PoolOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), cfg.Minio.ImageBucket); err != nil {
		log.Printf("WARNING: image bucket %s unavailable: %v", cfg.Minio.ImageBucket, err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	productImageRepo := repositories.NewProductImageRepo(pool)
	cartRepo := repositories.NewCartRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	wishlistRepo := repositories.NewWishlistRepo(pool)
	reviewRepo := repositories.NewReviewRepo(pool)
	txRunner := repositories.NewTxRunner(pool)

	// Services
	accountSvc := services.NewAccountService(userRepo, cfg.AdminCacheTTL.Duration, cfg.AdminCacheSize)
	productSvc := services.NewProductService(productRepo, categoryRepo, productImageRepo, minioSvc, cacheSvc, cfg.Minio.ImageBucket)
	categorySvc := services.NewCategoryService(categoryRepo, cacheSvc)
	cartSvc := services.NewCartService(cartRepo, productRepo)
	checkoutSvc := services.NewCheckoutService(cartRepo, txRunner, cacheSvc, cfg.Checkout.Timeout.Duration)
	orderSvc := services.NewOrderService(orderRepo, txRunner, cacheSvc)
	wishlistSvc := services.NewWishlistService(wishlistRepo, productRepo)
	reviewSvc := services.NewReviewService(reviewRepo, productRepo)

	authenticator, err := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWKSURL, accountSvc)
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}
	defer authenticator.Close()

	scheduler, err := jobs.NewJobScheduler(jobs.NewInventoryAlertService(productRepo, cfg.LowStockThreshold), accountSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	router := &handlers.Router{
		Health:       handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, cfg.Minio.ImageBucket, version),
		Products:     handlers.NewProductHandlers(productSvc),
		Categories:   handlers.NewCategoryHandlers(categorySvc),
		Reviews:      handlers.NewReviewHandlers(reviewSvc),
		Cart:         handlers.NewCartHandlers(cartSvc),
		Checkout:     handlers.NewCheckoutHandlers(checkoutSvc),
		Orders:       handlers.NewOrderHandlers(orderSvc),
		Wishlist:     handlers.NewWishlistHandlers(wishlistSvc),
		Authenticate: authenticator.Middleware(),
		RequireAdmin: middleware.RequireAdmin(accountSvc),
	}
	if cfg.Checkout.RateLimit > 0 {
		router.CheckoutLimit = middleware.RateLimit(cacheSvc, "checkout", cfg.Checkout.RateLimit, time.Minute)
	}
	router.Register(e)

	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		log.Printf("Storefront server v%s starting on port %d", version, cfg.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown failed: %v", err)
	}
}
