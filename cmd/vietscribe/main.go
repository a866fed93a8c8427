package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vietscribe/vietscribe/app/controllers"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/aiclient"
	"github.com/vietscribe/vietscribe/internal/pkg/aitools"
	"github.com/vietscribe/vietscribe/internal/pkg/auth"
	"github.com/vietscribe/vietscribe/internal/pkg/billing"
	"github.com/vietscribe/vietscribe/internal/pkg/cache"
	"github.com/vietscribe/vietscribe/internal/pkg/database"
	"github.com/vietscribe/vietscribe/internal/pkg/env"
	"github.com/vietscribe/vietscribe/internal/pkg/export"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/metrics/counter"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/router"
	"github.com/vietscribe/vietscribe/internal/pkg/s3store"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("shutting down")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, error) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	repos := repository.GetGlobalFactory()
	catalog := plans.Default()

	billingSvc := billing.NewService(repos.GetSubscriptionRepository(), repos.GetPaymentRepository())
	meter := metering.New(catalog, billingSvc, repos.GetUsageRepository())
	meter.Invoker.SetObserver(counter.Observer())

	ai := aiclient.NewClientFromEnv()
	if ai == nil {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	aiSvc := aitools.NewService(ai, meter.Invoker)

	var exportSvc *export.Service
	s3cfg, err := s3store.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("exports storage config: %w", err)
	}
	if s3cfg.IsEnabled() {
		store, err := s3store.NewClient(s3cfg)
		if err != nil {
			return nil, fmt.Errorf("exports storage: %w", err)
		}
		exportSvc = export.NewService(store, meter.Invoker)
	} else {
		log.Println("exports storage disabled, document export unavailable")
	}

	stripeSvc := billing.NewStripeFromEnv(billingSvc)
	if stripeSvc == nil {
		log.Println("stripe not configured, card payments unavailable")
	}

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	controllers.Setup(controllers.Services{
		Catalog: catalog,
		Meter:   meter,
		Billing: billingSvc,
		Stripe:  stripeSvc,
		AI:      aiSvc,
		Export:  exportSvc,
	})

	app := fiber.New(fiber.Config{
		AppName: "VietScribe",
	})

	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	router.InstallRouter(app, router.Dependencies{
		Verifier: verifier,
		Users:    repos.GetUserRepository(),
	})

	return app, nil
}
