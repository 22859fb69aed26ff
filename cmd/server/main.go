package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/turnosmx/sistema-turnos/internal/config"
	"github.com/turnosmx/sistema-turnos/internal/database"
	"github.com/turnosmx/sistema-turnos/internal/handler"
	"github.com/turnosmx/sistema-turnos/internal/middleware"
	"github.com/turnosmx/sistema-turnos/internal/queue"
	"github.com/turnosmx/sistema-turnos/internal/repository"
	"github.com/turnosmx/sistema-turnos/internal/router"
	"github.com/turnosmx/sistema-turnos/internal/turno"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	tickets := repository.NewTicketRepo(db)
	municipios := repository.NewMunicipioRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	stats := repository.NewStatsRepo(db)
	assigner := turno.NewAssigner(tickets)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(assigner, tickets, municipios)
	adminTicketH := handler.NewAdminTicketHandler(assigner, tickets, municipios, stats)
	adminMunH := handler.NewAdminMunicipioHandler(municipios)
	apiH := handler.NewAPIHandler(publicH, tickets, stats)

	// Redis is optional; with no client both middlewares pass through.
	rdb := config.NewRedisClient()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	go func() {
		if err := queue.StartTurnoConsumer(); err != nil {
			log.Printf("turno consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicH, limit, cache)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminTicketH, adminMunH, cfg.JWTSecret)
	router.RegisterAPI(e, apiH, limit, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
