package main

import (
	"log"
	"net/http"

	_ "accountsvc/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"accountsvc/internal/auth"
	"accountsvc/internal/cache"
	"accountsvc/internal/config"
	"accountsvc/internal/db"
	"accountsvc/internal/handler"
	"accountsvc/internal/model"
	"accountsvc/internal/repository"
	"accountsvc/internal/router"
	"accountsvc/internal/service"
)

// @title User Account Service API
// @version 1.0
// @description User account service with registration, login, and profile management over JWT authentication.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	// Pick the store backend: MySQL when a DSN is configured, in-memory otherwise.
	var userRepo repository.UserRepository
	if cfg.MySQLDSN != "" {
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("database init: %v", err)
		}
		if err := gormDB.AutoMigrate(&model.User{}); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}
		userRepo = repository.NewUserRepository(gormDB)
	} else {
		log.Println("MYSQL_DSN not set, using in-memory user store")
		userRepo = repository.NewMemoryRepository()
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	hasher := auth.NewPasswordHasher()

	// Initialize services and handlers
	userService := service.NewUserService(userRepo, hasher, jwtService, cacheClient)
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)

	// Register routes
	router.Register(e, cfg, authHandler, userHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
