package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/vietscribe/vietscribe/app/controllers"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/auth"
	"github.com/vietscribe/vietscribe/internal/pkg/env"
	"github.com/vietscribe/vietscribe/internal/pkg/middleware"
)

// Dependencies carries what the routes need beyond the controller services
// registered via controllers.Setup.
type Dependencies struct {
	Verifier *auth.Verifier
	Users    repository.UserRepository
}

type ApiRouter struct {
	deps Dependencies
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

// newLimiterStorage backs the rate limiter with the shared cache server so
// limits hold across instances.
func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Database: 1,
	})
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Stripe calls this directly; the signature header is the auth.
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))

	v1 := api.Group("/v1")

	// Public plan listing so the pricing page works without a login.
	v1.Get("/plans", controllers.HandleListPlans)

	// Admin uses basicauth, not bearer tokens, so it must be mounted
	// before the bearer middleware. Both claim the Authorization header.
	admin := v1.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/orders", controllers.HandleAdminListOrders)
	admin.Post("/orders/:code/confirm", controllers.HandleAdminConfirmOrder)
	admin.Get("/stats", controllers.HandleAdminStats)

	v1.Use(middleware.BearerAuth(h.deps.Verifier, h.deps.Users))

	v1.Post("/outlines", controllers.HandleGenerateOutline)
	v1.Post("/writing/assist", controllers.HandleWritingAssist)
	v1.Post("/grammar/check", controllers.HandleGrammarCheck)
	v1.Post("/summaries", controllers.HandleSummarize)
	v1.Post("/plagiarism/check", controllers.HandlePlagiarismCheck)

	projects := v1.Group("/projects")
	projects.Post("/", controllers.HandleCreateProject)
	projects.Get("/", controllers.HandleListProjects)
	projects.Get("/:uuid", controllers.HandleGetProject)
	projects.Patch("/:uuid", controllers.HandleUpdateProject)
	projects.Delete("/:uuid", controllers.HandleDeleteProject)
	projects.Post("/:uuid/sections", controllers.HandleAddSection)
	projects.Post("/:uuid/export", controllers.HandleExportProject)
	projects.Post("/:uuid/collaborators", controllers.HandleAddCollaborator)
	projects.Get("/:uuid/collaborators", controllers.HandleListCollaborators)

	v1.Post("/citations/format", controllers.HandleFormatCitation)
	v1.Get("/citations", controllers.HandleListCitations)

	v1.Get("/templates", controllers.HandleListTemplates)
	v1.Post("/templates/:id/use", controllers.HandleUseTemplate)

	v1.Get("/subscription", controllers.HandleGetSubscription)
	v1.Get("/usage", controllers.HandleGetUsage)
	v1.Post("/subscription/cancel-auto-renew", controllers.HandleCancelAutoRenew)

	payments := v1.Group("/payments")
	payments.Post("/orders", controllers.HandleCreateOrder)
	payments.Post("/checkout", controllers.HandleCreateCheckout)
}
