package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/TobiasKrause/DamageDesk/app/controllers"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "DamageDesk API",
		})
	})

	authRequired := middleware.JWTAuthMiddleware()

	reportsGroup := api.Group("/reports")
	reportsGroup.Post("/damage", authRequired, controllers.HandleReportDamage)
	reportsGroup.Get("/", authRequired, controllers.HandleListReports)
	reportsGroup.Get("/:id", authRequired, controllers.HandleGetReport)
	reportsGroup.Patch("/:id/review", authRequired, controllers.HandleReviewReport)

	// machine-to-machine classifier callback
	reportsGroup.Post("/:id/analysis", middleware.APIKeyAuthMiddleware(), controllers.HandleAttachAnalysis)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
