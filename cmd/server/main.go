package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gympoint/class-scheduler/internal/config"
	"github.com/gympoint/class-scheduler/internal/database"
	"github.com/gympoint/class-scheduler/internal/handler"
	"github.com/gympoint/class-scheduler/internal/jobs"
	"github.com/gympoint/class-scheduler/internal/queue"
	"github.com/gympoint/class-scheduler/internal/repository"
	"github.com/gympoint/class-scheduler/internal/router"
	"github.com/gympoint/class-scheduler/internal/scheduler"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	templates := repository.NewTemplateRepo(db)
	instances := repository.NewInstanceRepo(db)
	reservations := repository.NewReservationRepo(db)

	sched := scheduler.New(db, templates, instances, cfg.RoomCount)

	h := router.Handlers{
		Templates:    handler.NewTemplateHandler(templates, instances, users, cfg.RestDay),
		Instances:    handler.NewInstanceHandler(sched, templates, instances, reservations, cfg.GenerationDays),
		Reservations: handler.NewReservationHandler(templates, instances, reservations, cfg.MinLeadDays, cfg.MaxLeadDays),
		Schedule:     handler.NewScheduleHandler(instances),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, h, cfg.JWTSecret, rdb)

	// Background workers: the event consumer drains the broker queues
	// and the cron job keeps the rolling booking window materialized.
	go queue.StartScheduleConsumer()
	cronRunner, err := jobs.StartGenerator(cfg.GenerateCron, users, sched, cfg.GenerationDays)
	if err != nil {
		log.Fatalf("jobs: %v", err)
	}
	defer cronRunner.Stop()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
