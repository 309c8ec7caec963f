package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/config"
	"github.com/starcineplex/ticketing/internal/database"
	"github.com/starcineplex/ticketing/internal/handler"
	appmw "github.com/starcineplex/ticketing/internal/middleware"
	"github.com/starcineplex/ticketing/internal/payment"
	"github.com/starcineplex/ticketing/internal/queue"
	"github.com/starcineplex/ticketing/internal/repository"
	"github.com/starcineplex/ticketing/internal/reservation"
	"github.com/starcineplex/ticketing/internal/router"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Repositories and the reservation engine over MySQL.
	movieRepo := repository.NewMovieRepo(db)
	hallRepo := repository.NewHallRepo(db)
	showRepo := repository.NewShowRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	store := repository.NewReservationStore(db)
	catalog := repository.NewCatalog(showRepo, hallRepo)
	engine := reservation.NewEngine(store, catalog)
	engine.SetDefaultHoldTTL(cfg.HoldTTL)
	gateway := payment.NewSimulatedGateway(cfg.PaySuccess, 0)

	// Background expiry sweep keeps lapsed holds from lingering when no
	// request touches them.
	sweeper := reservation.NewSweeper(store, cfg.SweepInterval)
	go sweeper.Run(context.Background())

	// Hourly pass moving started shows to COMPLETED so they drop out
	// of the public schedule.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for now := range ticker.C {
			if n, err := showRepo.MarkCompleted(context.Background(), now.UTC()); err != nil {
				log.Printf("show-janitor: completion pass failed: %v", err)
			} else if n > 0 {
				log.Printf("show-janitor: marked %d shows completed", n)
			}
		}
	}()

	// Booking event consumer writes lifecycle lines to logs/booking.log.
	if cfg.PublishEvents {
		go func() {
			if err := queue.StartBookingConsumer(); err != nil {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()

	// Redis-backed rate limiting (global) and response caching (public
	// catalog reads only).  Both degrade to no-ops when Redis is
	// unavailable.
	rdb := config.NewRedisClient()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	publicCache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

	publicHandler := handler.NewPublicHandler(movieRepo, showRepo, hallRepo, reviewRepo, engine)
	reservationHandler := handler.NewReservationHandler(engine, movieRepo, showRepo, hallRepo, cfg.PublishEvents)
	bookingHandler := handler.NewBookingHandler(engine, gateway, cfg.PublishEvents)
	favoriteHandler := handler.NewFavoriteHandler(favoriteRepo, movieRepo)
	reviewHandler := handler.NewReviewHandler(reviewRepo, movieRepo)
	adminCatalog := handler.NewAdminCatalogHandler(movieRepo, hallRepo, showRepo)
	adminBooking := handler.NewAdminBookingHandler(engine)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, publicHandler, publicCache)
	router.RegisterCustomer(e, reservationHandler, bookingHandler, favoriteHandler, reviewHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminCatalog, adminBooking, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
