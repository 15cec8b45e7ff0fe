package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/motoshop/auth-service/internal/config"
	"github.com/motoshop/auth-service/internal/database"
	"github.com/motoshop/auth-service/internal/handler"
	"github.com/motoshop/auth-service/internal/middleware"
	"github.com/motoshop/auth-service/internal/repository"
	"github.com/motoshop/auth-service/internal/router"

	authsvc "github.com/motoshop/auth-service/internal/auth"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	svc := authsvc.NewService(users, cfg.Auth())

	// Redis is optional; without it login throttling degrades to a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, login rate limiting disabled")
	}
	loginLimit := middleware.LoginRateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, handler.NewAuthHandler(svc, users), handler.NewUserHandler(svc, users), loginLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
