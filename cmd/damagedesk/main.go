package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/TobiasKrause/DamageDesk/app/controllers"
	"github.com/TobiasKrause/DamageDesk/app/repository"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/cache"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/database"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/env"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/reports"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/router"
	"github.com/TobiasKrause/DamageDesk/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)

	uploadDir := env.GetEnv("UPLOAD_DIR", "./uploads")
	store := storage.NewLocalStore(uploadDir, "/uploads")

	svc := reports.NewService(repository.GetGlobalRepositories(), store).WithCache(redisCache{})
	controllers.InitializeReportController(svc)

	// init fiber app; body limit covers five 10 MiB images plus form overhead
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// static uploads: stored originals and thumbnails
	app.Static("/uploads", uploadDir, fiber.Static{
		CacheDuration: 10 * time.Second,
		Compress:      false,
		MaxAge:        604800, // 7 days
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

// redisCache adapts the cache package to the reports.Cache interface.
type redisCache struct{}

func (redisCache) Get(key string) (string, error) {
	return cache.Get(key)
}

func (redisCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

func (redisCache) Delete(key string) error {
	return cache.Delete(key)
}
